package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"hedgesim/internal/analysts"
	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

// Options configure a backtest run beyond its collaborators.
type Options struct {
	Start          time.Time
	End            time.Time
	Tickers        []string
	InitialCapital decimal.Decimal
	AnalystTimeout time.Duration
	// ShowProgress renders a terminal progress bar over the date range.
	ShowProgress bool
}

// Result is the complete outcome of one run.
type Result struct {
	EquityCurve    []types.EquityPoint
	Orders         []types.Order
	FinalView      types.PortfolioView
	InitialCapital decimal.Decimal
}

// Backtest drives the simulation: a strictly sequential walk over business
// days, fanning out to analysts inside each day and committing portfolio
// changes in fixed ticker order. Identical inputs produce identical results.
type Backtest struct {
	provider  marketdata.Provider
	analysts  []analysts.Analyst
	allocator *Allocator
	limits    *Limits
	executor  *Executor
	opts      Options
	priority  []string
	log       zerolog.Logger
}

func NewBacktest(provider marketdata.Provider, set []analysts.Analyst, allocator *Allocator, limits *Limits, executor *Executor, opts Options, log zerolog.Logger) *Backtest {
	priority := make([]string, len(set))
	for i, analyst := range set {
		priority[i] = analyst.ID()
	}
	return &Backtest{
		provider:  provider,
		analysts:  set,
		allocator: allocator,
		limits:    limits,
		executor:  executor,
		opts:      opts,
		priority:  priority,
		log:       log.With().Str("component", "backtest").Logger(),
	}
}

// Run executes the simulation and returns the result. The only fatal errors
// are context cancellation and an empty trading calendar; data gaps and
// analyst failures degrade per ticker/date.
func (b *Backtest) Run(ctx context.Context) (*Result, error) {
	dates := BusinessDays(b.opts.Start, b.opts.End)
	if len(dates) == 0 {
		return nil, fmt.Errorf("no business days between %s and %s",
			b.opts.Start.Format("2006-01-02"), b.opts.End.Format("2006-01-02"))
	}

	portfolio := NewPortfolio(b.opts.InitialCapital)
	peakEquity := b.opts.InitialCapital

	var bar *progressbar.ProgressBar
	if b.opts.ShowProgress {
		bar = progressbar.Default(int64(len(dates)), "backtesting")
	}

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.runDate(ctx, date, portfolio, peakEquity); err != nil {
			return nil, err
		}
		point := portfolio.SnapshotEquity(date)
		if point.TotalValue.GreaterThan(peakEquity) {
			peakEquity = point.TotalValue
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	last := dates[len(dates)-1]
	return &Result{
		EquityCurve:    portfolio.EquityCurve(),
		Orders:         portfolio.Orders(),
		FinalView:      portfolio.View(last),
		InitialCapital: b.opts.InitialCapital,
	}, nil
}

func (b *Backtest) runDate(ctx context.Context, date time.Time, portfolio *Portfolio, peakEquity decimal.Decimal) error {
	for _, ticker := range b.opts.Tickers {
		snap, err := marketdata.BuildSnapshot(ctx, b.provider, ticker, b.opts.Start, date)
		if err != nil {
			if err == marketdata.ErrNoData {
				b.log.Debug().Str("ticker", ticker).Time("date", date).Msg("no data, skipping")
				continue
			}
			return fmt.Errorf("snapshot %s %s: %w", ticker, date.Format("2006-01-02"), err)
		}
		latest, _ := snap.LatestBar()
		if !sameDay(latest.Date, date) {
			// Stale data: the ticker did not trade today. Keep the old
			// mark and place no orders.
			b.log.Debug().Str("ticker", ticker).Time("date", date).Msg("no bar for date, skipping")
			continue
		}

		price := latest.Close
		portfolio.MarkToMarket(ticker, price)

		signals := b.evaluate(ctx, snap)
		verdict := Aggregate(signals, b.priority)

		view := portfolio.View(date)
		decision := b.allocator.Size(verdict, ticker, date, price, view, signals)
		if decision.Quantity.IsZero() {
			continue
		}
		approved, vetoReason := b.limits.Apply(decision, price, view, peakEquity)
		if vetoReason != "" {
			// A risk veto is part of the trade history, like any other
			// rejection.
			portfolio.RecordOrder(types.Order{
				ID:           orderID(decision, price),
				Ticker:       decision.Ticker,
				Date:         decision.Date,
				Action:       decision.Action,
				Quantity:     decision.Quantity,
				Price:        price,
				Status:       types.OrderRejected,
				RejectReason: vetoReason,
			})
			continue
		}
		if approved.Quantity.IsZero() {
			continue
		}
		b.executor.Execute(approved, price, portfolio)
	}
	return nil
}

// evaluate runs every analyst concurrently for one snapshot. Each analyst is
// bounded by the configured timeout; on expiry its slot degrades to a neutral
// signal and the evaluation goroutine is abandoned. Results keep analyst
// order, so aggregation sees a deterministic slice regardless of completion
// order.
func (b *Backtest) evaluate(ctx context.Context, snap *marketdata.Snapshot) []types.Signal {
	results := make([]types.Signal, len(b.analysts))
	g, gctx := errgroup.WithContext(ctx)
	for i, analyst := range b.analysts {
		i, analyst := i, analyst
		g.Go(func() error {
			results[i] = b.evaluateOne(gctx, analyst, snap)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (b *Backtest) evaluateOne(ctx context.Context, analyst analysts.Analyst, snap *marketdata.Snapshot) types.Signal {
	if b.opts.AnalystTimeout <= 0 {
		return analyst.Evaluate(ctx, snap)
	}

	tctx, cancel := context.WithTimeout(ctx, b.opts.AnalystTimeout)
	defer cancel()

	done := make(chan types.Signal, 1)
	go func() {
		done <- analyst.Evaluate(tctx, snap)
	}()

	select {
	case sig := <-done:
		return sig
	case <-tctx.Done():
		b.log.Warn().Str("analyst", analyst.ID()).Str("ticker", snap.Ticker).Msg("analyst timed out")
		return types.NeutralSignal(snap.Ticker, snap.Date, analyst.ID(), "evaluation timed out")
	}
}

// BusinessDays lists the weekdays from start through end inclusive, at
// midnight UTC. Exchange holidays are not modelled; dates without bars are
// skipped at runtime instead.
func BusinessDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := midnightUTC(start); !d.After(midnightUTC(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
