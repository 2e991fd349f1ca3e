package analysts

import (
	"context"
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

const (
	rsiPeriod  = 14
	smaFast    = 20
	smaSlow    = 50
	minHistory = smaSlow + 1
)

// TechnicalsAnalyst trades RSI extremes confirmed by the 20/50 SMA trend.
type TechnicalsAnalyst struct {
	log zerolog.Logger
}

func NewTechnicalsAnalyst(d Deps) *TechnicalsAnalyst {
	return &TechnicalsAnalyst{log: d.Log.With().Str("analyst", "technicals").Logger()}
}

func (a *TechnicalsAnalyst) ID() string { return "technicals" }

func (a *TechnicalsAnalyst) Evaluate(_ context.Context, snap *marketdata.Snapshot) types.Signal {
	closes := snap.Closes()
	if len(closes) < minHistory {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(),
			fmt.Sprintf("need %d bars of history, have %d", minHistory, len(closes)))
	}

	rsi := last(talib.Rsi(closes, rsiPeriod))
	fast := last(talib.Sma(closes, smaFast))
	slow := last(talib.Sma(closes, smaSlow))
	uptrend := fast > slow

	rationale := fmt.Sprintf("RSI(%d)=%.1f, SMA%d=%.2f, SMA%d=%.2f", rsiPeriod, rsi, smaFast, fast, smaSlow, slow)

	var action types.Action
	var confidence float64
	switch {
	case rsi < 30 && uptrend:
		action = types.ActionBuy
		confidence = math.Min((30-rsi)/30+0.5, 0.95)
	case rsi > 70 && !uptrend:
		action = types.ActionSell
		confidence = math.Min((rsi-70)/30+0.5, 0.95)
	default:
		action = types.ActionHold
		confidence = 0.25
	}

	return types.NewSignal(snap.Ticker, snap.Date, a.ID(), action, confidence, rationale)
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
