package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"kala/internal/config"
	"kala/internal/database/migration"
	dbpostgres "kala/internal/database/postgres"
	"kala/migrations"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(o *options) *cobra.Command {
	var dir string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Long: `Applies V<n>__<name>.sql migrations in version order. The connection
comes from the regular server configuration (configs/config.yaml and the
environment). Without --dir the migrations embedded in the binary are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("database is disabled, set database.enabled to migrate")
			}

			var fsys fs.FS = migrations.FS
			if d := strings.TrimSpace(firstNonEmpty(dir, cfg.Database.MigrationsDir)); d != "" {
				fsys = os.DirFS(d)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := dbpostgres.Connect(ctx, cfg.Database, o.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					o.logger.Warn("close database", zap.Error(err))
				}
			}()

			n, err := migration.Runner{FS: fsys, Logger: o.logger}.Run(ctx, db.SQLDB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of .sql migrations, overrides database.migrations_dir")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall migration timeout")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
