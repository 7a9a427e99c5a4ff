package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atomicstack/cmdpalette/internal/app"
	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/config"
	"github.com/atomicstack/cmdpalette/internal/format/table"
	"github.com/atomicstack/cmdpalette/internal/logging"
	"github.com/atomicstack/cmdpalette/internal/navigator"
	"github.com/spf13/cobra"
)

func newQueryCmd(values *config.Values) *cobra.Command {
	return &cobra.Command{
		Use:   "query [search...]",
		Short: "Print the actions visible for a root and search without the UI",
		Args:  cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := prepare(values, args)
			if err != nil {
				return err
			}
			cat, err := app.LoadCatalog(cfg.App, logging.Logr())
			if err != nil {
				return err
			}
			search := strings.Join(args, " ")
			if search == "" {
				search = cfg.App.Search
			}
			res, loadErr := visibleWithLoads(c.Context(), cat, navigator.Options{
				RootID:         cfg.App.Root,
				Query:          search,
				IgnorePrefixes: cfg.App.IgnorePrefixes,
				NumRecent:      cfg.App.NumRecent,
			})
			writeResult(c.OutOrStdout(), res)
			return loadErr
		},
	}
}

// visibleWithLoads computes the visible set, runs any lazy loads it started
// and computes it again.
func visibleWithLoads(ctx context.Context, cat *catalog.Catalog, opts navigator.Options) (navigator.Result, error) {
	res := navigator.Visible(cat, opts)
	if len(res.Loads) == 0 {
		return res, nil
	}
	var errs []error
	for _, l := range res.Loads {
		actions, err := l.Run(ctx)
		if err := cat.Resolve(l, actions, err); err != nil {
			errs = append(errs, err)
		}
	}
	return navigator.Visible(cat, opts), errors.Join(errs...)
}

func writeResult(out io.Writer, res navigator.Result) {
	if res.Len() == 0 {
		fmt.Fprintln(out, "(no actions)")
		return
	}
	rows := [][]string{{"ID", "TITLE", "SECTION", "RANK", "GROUP", "HOTKEY"}}
	for i, m := range res.Matches {
		rows = append(rows, []string{
			m.Action.ID,
			m.Action.Title,
			m.Action.Section,
			strconv.FormatFloat(m.Rank, 'f', 3, 64),
			spanName(res.Groups, i),
			m.Action.Hotkey,
		})
	}
	aligns := []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignRight}
	for _, line := range table.Format(rows, aligns) {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
}

func spanName(spans []navigator.Span, idx int) string {
	for _, s := range spans {
		if idx >= s.Start && idx < s.End {
			return s.Name
		}
	}
	return ""
}
