package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockdash/pkg/logger"
	"stockdash/pkg/termchart"
	"stockdash/services/dashboard"
	"stockdash/services/market"
)

type snapshotOptions struct {
	search string
	desc   bool
	charts bool
}

func newSnapshotCmd() *cobra.Command {
	var opts snapshotOptions

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load quotes once and print them",
		Long:  "Load quotes once, print the filtered and sorted table (or the charts), and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logOpts := logger.FromConfig(cfg.Logging)
			logOpts.Console = cmd.ErrOrStderr()
			logOpts.Format = "pretty"
			if err := logger.Init(logOpts); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			src, closeSource, err := market.NewSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			return runSnapshot(cmd.Context(), cmd.OutOrStdout(), src, cfg.Symbols, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "only show symbols containing this text")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort by price, highest first")
	cmd.Flags().BoolVar(&opts.charts, "charts", false, "print the aggregate charts instead of the table")

	return cmd
}

func runSnapshot(ctx context.Context, w io.Writer, src market.Source, symbols []string, opts snapshotOptions) error {
	quotes, err := src.FetchQuotes(ctx, symbols)
	load := dashboard.Resolve(quotes, err)

	switch st := load.(type) {
	case dashboard.Failed:
		if errors.Is(st.Err, context.Canceled) {
			return st.Err
		}
		return fmt.Errorf("load quotes: %w", st.Err)

	case dashboard.Ready:
		if st.Warning != nil {
			log.Warn().Strs("symbols", st.Warning.Symbols()).Msg("Some quotes unavailable, shown as zero")
		}

		if opts.charts {
			charts := dashboard.BuildCharts(st.Quotes)
			fmt.Fprintln(w, termchart.Bars(charts.Prices, 40))
			fmt.Fprintln(w)
			fmt.Fprintln(w, termchart.Donut(charts.Movers, 20))
			return nil
		}

		view := dashboard.DefaultViewState()
		view.SetSearch(opts.search)
		view.SetSortAscending(!opts.desc)

		rows := dashboard.Rows(st, view)
		if len(rows) == 0 {
			fmt.Fprintln(w, "No stocks found")
			return nil
		}
		fmt.Fprintln(w, snapshotTable(rows, view.SortAscending))
	}

	return nil
}

func snapshotTable(rows []market.Quote, ascending bool) string {
	arrow := "↓"
	if ascending {
		arrow = "↑"
	}

	trend := "Trend"
	var span []string
	data := make([][]string, len(rows))
	for i, q := range rows {
		line := dashboard.Sparkline(q)
		if len(line.Labels) > len(span) {
			span = line.Labels
		}
		data[i] = []string{
			q.Symbol,
			fmt.Sprintf("$%.2f", q.Price),
			fmt.Sprintf("%.2f%%", q.ChangePercent),
			q.MarketCap,
			termchart.Line(line),
		}
	}
	if len(span) > 0 {
		trend = fmt.Sprintf("Trend %s…%s", span[0], span[len(span)-1])
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		Headers("Symbol", "Price "+arrow, "Change %", "Mkt Cap", trend).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col == 2 && row >= 0 && row < len(rows) {
				return style.Foreground(lipgloss.Color(dashboard.ChangeColor(rows[row].ChangePercent)))
			}
			return style
		})

	return t.String()
}
