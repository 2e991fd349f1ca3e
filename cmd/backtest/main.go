package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"hedgesim/internal/analysts"
	"hedgesim/internal/config"
	"hedgesim/internal/engine"
	"hedgesim/internal/llm"
	"hedgesim/internal/marketdata"
	"hedgesim/internal/repository"
	"hedgesim/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the run configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	start, err := cfg.StartDate()
	if err != nil {
		return err
	}
	end, err := cfg.EndDate()
	if err != nil {
		return err
	}

	store := marketdata.NewStoreProvider(db,
		repository.ErrAssetNotFound, repository.ErrNoBars, repository.ErrNoRecord)
	provider := marketdata.NewCachedProvider(store, start, end)

	generator, err := newGenerator(cfg.LLM, log)
	if err != nil {
		return err
	}

	set, err := analysts.Select(cfg.Backtest.Analysts, analysts.Deps{Generator: generator, Log: log})
	if err != nil {
		return err
	}

	commission := engine.NewCommission(cfg.Commission)
	allocator := engine.NewAllocator(commission, cfg.Risk.AllowShort, cfg.Risk.MaxPositionPct)
	limits := engine.NewLimits(cfg.Risk, log)
	executor := engine.NewExecutor(commission, log)

	bt := engine.NewBacktest(provider, set, allocator, limits, executor, engine.Options{
		Start:          start,
		End:            end,
		Tickers:        cfg.Backtest.Tickers,
		InitialCapital: cfg.InitialCapital(),
		AnalystTimeout: cfg.Backtest.AnalystTimeout(),
		ShowProgress:   true,
	}, log)

	log.Info().
		Strs("tickers", cfg.Backtest.Tickers).
		Strs("analysts", cfg.Backtest.Analysts).
		Str("start", cfg.Backtest.StartDate).
		Str("end", cfg.Backtest.EndDate).
		Msg("starting backtest")

	result, err := bt.Run(ctx)
	if err != nil {
		return err
	}

	metrics := engine.ComputeMetrics(result, cfg.Report.RiskFreeRate)
	engine.WriteReport(os.Stdout, metrics)

	if cfg.Report.TradesCSV != "" {
		if err := engine.WriteTradesCSV(cfg.Report.TradesCSV, result.Orders); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Report.TradesCSV).Int("orders", len(result.Orders)).Msg("exported trade history")
	}
	return nil
}

func newGenerator(cfg config.LLMConfig, log zerolog.Logger) (llm.Generator, error) {
	switch cfg.Mode {
	case "simulated":
		return llm.NewSimulatedGenerator(cfg.Seed), nil
	case "http":
		return llm.NewHTTPGenerator(cfg.URL, cfg.APIKey, log), nil
	default:
		return nil, config.ErrUnknownLLMMode
	}
}
