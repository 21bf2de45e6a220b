package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"heartbeat/internal/config"
	"heartbeat/internal/engine"
	"heartbeat/internal/feed"
	"heartbeat/internal/journal"
	"heartbeat/internal/logger"
	"heartbeat/internal/metrics"
	"heartbeat/internal/repository"
	"heartbeat/internal/state"
	"heartbeat/strategies/heartbeat"
	"heartbeat/types"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var version = "dev"

type runOptions struct {
	configPath string
	ticks      int
	reset      bool
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Heartbeat - breakout and trailing-stop paper trader",
		Long: `Heartbeat replays a price feed through a breakout-entry, trailing-stop-exit
strategy against a paper ledger. State is saved after every tick so an
interrupted run resumes where it stopped.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("ticks") {
				opts.ticks = -1
			}
			return run(ctx, opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.configPath, "config", "config.yaml", "Configuration file path")
	rootCmd.Flags().IntVar(&opts.ticks, "ticks", 0, "Number of synthetic ticks to generate (0 runs until interrupted)")
	rootCmd.Flags().BoolVar(&opts.reset, "reset", false, "Ignore the saved state and start fresh")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "heartbeat %s\n", version)
		},
	}
}

func run(ctx context.Context, opts *runOptions) error {
	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return err
	}
	if opts.ticks >= 0 {
		cfg.DemoTicks = opts.ticks
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}

	priceFeed, closeFeed, err := newFeed(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFeed()

	recorder := metrics.New(cfg.Symbol)
	eng := engine.NewEngine(
		priceFeed,
		newStrategy(cfg),
		engine.NewTradingConfig(
			cfg.Symbol,
			decimal.NewFromFloat(cfg.FeeRate),
			decimal.NewFromFloat(cfg.SlippageRate),
			decimal.NewFromFloat(cfg.TradeSizeCash),
			cfg.ReportInterval(),
		),
		engine.NewLedgerConfig(decimal.NewFromFloat(cfg.InitialCash)),
		engine.NewRunConfig(opts.reset, expectedTicks(cfg), progressWriter(cfg), cfg.TradesCSVPath),
		state.NewFileStore(cfg.StatePath),
		journal.NewFileJournal(cfg.TradesLogPath, cfg.HourlyReportPath),
		recorder,
		log.With().Str("symbol", cfg.Symbol).Logger(),
	)

	log.Info().
		Str("feed", cfg.Feed.Source).
		Str("state_path", cfg.StatePath).
		Bool("reset", opts.reset).
		Msg("starting simulation")

	report, err := eng.Run(ctx)
	if report != nil {
		fmt.Println(renderReport(cfg.Symbol, report))
	}
	if cfg.MetricsPath != "" {
		if werr := recorder.WriteTextfile(cfg.MetricsPath); werr != nil {
			log.Error().Err(werr).Str("path", cfg.MetricsPath).Msg("write metrics")
		}
	}
	return err
}

func newStrategy(cfg *config.Config) *heartbeat.Strategy {
	var filters []heartbeat.EntryFilter
	if cfg.Filters.VolatilityWindow > 0 {
		filters = append(filters, heartbeat.NewVolatilityFilter(
			cfg.Filters.VolatilityWindow,
			decimal.NewFromFloat(cfg.Filters.VolatilityMax),
		))
	}
	return heartbeat.New(heartbeat.Config{
		EffectiveGap: decimal.NewFromFloat(cfg.EffectiveGap),
		TrailingPct:  decimal.NewFromFloat(cfg.TrailingPct),
		Cooldown:     cfg.Cooldown(),
	}, filters...)
}

// newFeed returns the configured price source and a func releasing what it
// holds open.
func newFeed(ctx context.Context, cfg *config.Config) (engine.PriceFeed, func(), error) {
	switch cfg.Feed.Source {
	case config.FeedCSV:
		return feed.NewCSVFeed(cfg.Feed.CSVPath), func() {}, nil
	case config.FeedPostgres:
		interval, err := types.ParseInterval(cfg.Feed.Interval)
		if err != nil {
			return nil, nil, err
		}
		db, err := repository.NewDatabase(ctx, cfg.Feed.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		return feed.NewPostgresFeed(db, cfg.Symbol, interval, cfg.Feed.Start, cfg.Feed.End), db.Close, nil
	default:
		return feed.NewSyntheticFeed(feed.SyntheticConfig{
			StartPrice: cfg.DemoPriceStart,
			Volatility: cfg.DemoPriceVolatility,
			Interval:   cfg.DemoInterval(),
			Seed:       cfg.DemoSeed,
			Ticks:      cfg.DemoTicks,
		}), func() {}, nil
	}
}

func expectedTicks(cfg *config.Config) int {
	if cfg.Feed.Source == config.FeedDemo {
		return cfg.DemoTicks
	}
	return 0
}

func progressWriter(cfg *config.Config) io.Writer {
	if !cfg.Progress {
		return nil
	}
	return os.Stderr
}
