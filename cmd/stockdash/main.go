// Package main provides the stockdash command: an interactive terminal stock
// dashboard plus a one-shot snapshot printer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stockdash/pkg/config"
	"stockdash/pkg/logger"
	"stockdash/services/market"
)

var (
	version = "dev"
	commit  = "none"
)

// flags shared by every command
var (
	envFile   string
	source    string
	symbols   string
	mockDelay time.Duration
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var refresh time.Duration

	root := &cobra.Command{
		Use:   "stockdash",
		Short: "Terminal stock dashboard",
		Long: `stockdash shows live, stored or simulated quotes for a handful of symbols
as a searchable, sortable table or as aggregate charts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("refresh") {
				cfg.RefreshInterval = refresh
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// stdout belongs to the dashboard; logs go to file only.
			if err := logger.Init(logger.FromConfig(cfg.Logging)); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			return runDashboard(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&source, "source", "", "quote source: finnhub, mock or postgres (default from QUOTE_SOURCE)")
	pf.StringVar(&symbols, "symbols", "", "comma separated symbols (default from STOCK_SYMBOLS)")
	pf.DurationVar(&mockDelay, "mock-delay", time.Second, "artificial latency of the mock source")
	root.Flags().DurationVar(&refresh, "refresh", 0, "auto-refresh interval, 0 disables")

	root.AddCommand(newSnapshotCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockdash %s (%s)\n", version, commit)
		},
	}
}

// loadConfig reads the env file and environment, then applies flag overrides.
// Validation is left to the caller so commands can adjust first.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = strings.ToLower(source)
	}
	if flags.Changed("symbols") {
		if cfg.Symbols, err = config.ParseSymbols(symbols); err != nil {
			return nil, fmt.Errorf("parse --symbols: %w", err)
		}
	}
	if flags.Changed("mock-delay") {
		cfg.MockDelay = mockDelay
	}

	return cfg, nil
}

func runDashboard(ctx context.Context, cfg *config.Config) error {
	src, closeSource, err := market.NewSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	log.Info().Strs("symbols", cfg.Symbols).Str("source", cfg.Source).Msg("Starting dashboard")

	m := newModel(ctx, src, cfg.Symbols, cfg.RefreshInterval)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if fm, ok := final.(model); ok {
		fm.stop()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}

	log.Info().Msg("Dashboard closed")
	return nil
}
