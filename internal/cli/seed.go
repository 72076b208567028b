package cli

import (
	"context"
	"fmt"
	"time"

	"kala/internal/config"
	dbpostgres "kala/internal/database/postgres"
	"kala/internal/database/seeder"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCommand(o *options) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo products for one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("database is disabled, set database.enabled to seed")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
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

			r := seeder.Runner{
				Seeders: []seeder.Seeder{seeder.SampleProductsSeeder{Owner: ownerID}},
				Logger:  o.logger,
			}
			if err := r.Run(ctx, db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded demo products for %s\n", ownerID)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Session id that owns the products")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
