package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"kala/internal/domain/catalog"
	"kala/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type options struct {
	output   string
	logLevel string

	logger *zap.Logger
	cat    *catalog.Catalog
}

// NewRootCommand builds the kalactl command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "kalactl",
		Short: "Offline tools for the Kala artisan assistant",
		Long: `kalactl runs the assistant's domain logic without the HTTP server.

Commands:
  kalactl catalog [kind]       List catalog kinds or the options of one kind
  kalactl chat [text...]       Show the canned assistant reply for a message
  kalactl onboard --set k=v    Fill a draft and walk the onboarding wizard
  kalactl migrate              Apply pending PostgreSQL migrations
  kalactl seed --owner <id>    Insert the demo products for one session`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch o.output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q", o.output)
			}
			l, err := logger.New(o.logLevel, "console")
			if err != nil {
				return err
			}
			o.logger = l
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			o.cat = cat
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&o.output, "output", "o", "text", "Output format: text, json, yaml")
	root.PersistentFlags().StringVar(&o.logLevel, "log", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newCatalogCommand(o),
		newChatCommand(o),
		newOnboardCommand(o),
		newMigrateCommand(o),
		newSeedCommand(o),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// render writes v as json or yaml. It reports false for text output so the
// caller can print its own layout.
func (o *options) render(w io.Writer, v any) (bool, error) {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	}
	return false, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
