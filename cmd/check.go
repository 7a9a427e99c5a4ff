package cmd

import (
	"errors"
	"fmt"

	"github.com/atomicstack/cmdpalette/internal/app"
	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/config"
	"github.com/spf13/cobra"
)

func newCheckCmd(values *config.Values) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog file and report integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := prepare(values, args)
			if err != nil {
				return err
			}
			entries, err := app.LoadEntries(cfg.App)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			cat, err := catalog.New(entries)
			if err != nil {
				var integrity *catalog.IntegrityError
				if errors.As(err, &integrity) {
					for _, p := range integrity.Problems {
						fmt.Fprintln(out, p.String())
					}
					return fmt.Errorf("%d integrity problem(s) in %s", len(integrity.Problems), cfg.App.CatalogPath)
				}
				return err
			}
			fmt.Fprintf(out, "ok: %d actions\n", cat.Len())
			return nil
		},
	}
}
