package analysts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

// FundamentalsAnalyst scores profitability, growth, balance-sheet health and
// valuation from the latest reported metrics, each factor normalized to
// [0,1], and trades on the averaged score.
type FundamentalsAnalyst struct {
	log zerolog.Logger
}

func NewFundamentalsAnalyst(d Deps) *FundamentalsAnalyst {
	return &FundamentalsAnalyst{log: d.Log.With().Str("analyst", "fundamentals").Logger()}
}

func (a *FundamentalsAnalyst) ID() string { return "fundamentals" }

func (a *FundamentalsAnalyst) Evaluate(_ context.Context, snap *marketdata.Snapshot) types.Signal {
	f := snap.Fundamentals
	if f == nil {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(), "no fundamentals reported")
	}

	profitability := scorePair(f.ReturnOnEquity > 0.10, f.NetMargin > 0.10)
	growth := scorePair(f.RevenueGrowth > 0.05, f.EarningsGrowth > 0.05)
	health := scorePair(f.DebtToEquity > 0 && f.DebtToEquity < 1, f.CurrentRatio > 1.5)
	valuation := scorePair(f.PriceToEarnings > 0 && f.PriceToEarnings < 15, f.PriceToBook > 0 && f.PriceToBook < 1.5)

	overall := (profitability + growth + health + valuation) / 4

	rationale := fmt.Sprintf(
		"profitability %.2f, growth %.2f, health %.2f, valuation %.2f (overall %.2f)",
		profitability, growth, health, valuation, overall,
	)

	var action types.Action
	var confidence float64
	switch {
	case overall >= 0.6:
		action = types.ActionBuy
		confidence = overall
	case overall <= 0.25:
		action = types.ActionSell
		confidence = 1 - overall
	default:
		action = types.ActionHold
		confidence = 0.3
	}

	a.log.Debug().Str("ticker", snap.Ticker).Float64("score", overall).Msg("fundamental analysis")
	return types.NewSignal(snap.Ticker, snap.Date, a.ID(), action, confidence, rationale)
}

func scorePair(first, second bool) float64 {
	score := 0.0
	if first {
		score++
	}
	if second {
		score++
	}
	return score / 2
}
