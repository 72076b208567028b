package cli

import (
	"fmt"

	"kala/internal/domain/catalog"

	"github.com/spf13/cobra"
)

func newCatalogCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [kind]",
		Short: "List catalog kinds, or the options of one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				counts := make(map[catalog.Kind]int, len(catalog.Kinds()))
				for _, k := range catalog.Kinds() {
					counts[k] = o.cat.Count(k)
				}
				if done, err := o.render(w, counts); done || err != nil {
					return err
				}
				for _, k := range catalog.Kinds() {
					fmt.Fprintf(w, "%-20s %d\n", k, counts[k])
				}
				return nil
			}

			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			opts, err := o.cat.Options(kind)
			if err != nil {
				return err
			}
			if done, err := o.render(w, opts); done || err != nil {
				return err
			}
			for _, opt := range opts {
				if opt.NativeName != "" && opt.NativeName != opt.Name {
					fmt.Fprintf(w, "%-20s %s (%s)\n", opt.ID, opt.Name, opt.NativeName)
					continue
				}
				fmt.Fprintf(w, "%-20s %s\n", opt.ID, opt.Name)
			}
			return nil
		},
	}
}
