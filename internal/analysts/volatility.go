package analysts

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

const (
	volWindow        = 20
	tradingDays      = 252
	calmVolThreshold = 0.20
	highVolThreshold = 0.40
)

// VolatilityAnalyst leans bearish when annualized realized volatility runs
// hot and bullish when markets are calm. It never takes strong directional
// bets on its own; it exists to temper the other analysts.
type VolatilityAnalyst struct {
	log zerolog.Logger
}

func NewVolatilityAnalyst(d Deps) *VolatilityAnalyst {
	return &VolatilityAnalyst{log: d.Log.With().Str("analyst", "volatility").Logger()}
}

func (a *VolatilityAnalyst) ID() string { return "volatility" }

func (a *VolatilityAnalyst) Evaluate(_ context.Context, snap *marketdata.Snapshot) types.Signal {
	closes := snap.Closes()
	if len(closes) < volWindow+1 {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(),
			fmt.Sprintf("need %d bars of history, have %d", volWindow+1, len(closes)))
	}

	window := closes[len(closes)-volWindow-1:]
	returns := make([]float64, 0, volWindow)
	for i := 1; i < len(window); i++ {
		if window[i-1] == 0 {
			continue
		}
		returns = append(returns, window[i]/window[i-1]-1)
	}
	if len(returns) == 0 {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(), "no usable returns in window")
	}

	annualized := stat.StdDev(returns, nil) * math.Sqrt(tradingDays)
	rationale := fmt.Sprintf("%d-day realized vol %.1f%% annualized", volWindow, annualized*100)

	switch {
	case annualized > highVolThreshold:
		conf := math.Min(0.4+(annualized-highVolThreshold), 0.9)
		return types.NewSignal(snap.Ticker, snap.Date, a.ID(), types.ActionSell, conf, rationale)
	case annualized < calmVolThreshold:
		return types.NewSignal(snap.Ticker, snap.Date, a.ID(), types.ActionBuy, 0.3, rationale)
	default:
		return types.NewSignal(snap.Ticker, snap.Date, a.ID(), types.ActionHold, 0.2, rationale)
	}
}
