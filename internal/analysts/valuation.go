package analysts

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"hedgesim/internal/llm"
	"hedgesim/internal/marketdata"
	"hedgesim/types"
)

// DCF assumptions for the intrinsic value estimate.
const (
	dcfGrowthRate       = 0.06
	dcfDiscountRate     = 0.10
	dcfTerminalMultiple = 15
	dcfProjectionYears  = 5
)

// ValuationAnalyst estimates intrinsic value with a simple free-cash-flow DCF
// and compares it to market cap. A language model refines the preliminary
// stance; a generator failure degrades the whole signal to a zero-confidence
// hold.
type ValuationAnalyst struct {
	gen llm.Generator
	log zerolog.Logger
}

func NewValuationAnalyst(d Deps) *ValuationAnalyst {
	return &ValuationAnalyst{
		gen: d.Generator,
		log: d.Log.With().Str("analyst", "valuation").Logger(),
	}
}

func (a *ValuationAnalyst) ID() string { return "valuation" }

func (a *ValuationAnalyst) Evaluate(ctx context.Context, snap *marketdata.Snapshot) types.Signal {
	f := snap.Fundamentals
	if f == nil || f.MarketCap <= 0 {
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(), "no market cap or fundamentals")
	}

	intrinsic := intrinsicValue(f.FreeCashFlow)
	marginOfSafety := (intrinsic - f.MarketCap) / f.MarketCap

	quality := 0
	if f.ReturnOnEquity > 0.15 {
		quality += 2
	}
	if f.DebtToEquity > 0 && f.DebtToEquity < 0.5 {
		quality += 2
	}
	if f.OperatingMargin > 0.15 {
		quality += 2
	}

	action := types.ActionHold
	confidence := 0.3
	if quality >= 4 && marginOfSafety > 0.15 {
		action = types.ActionBuy
		confidence = math.Min(0.5+marginOfSafety, 0.95)
	} else if marginOfSafety < -0.30 {
		action = types.ActionSell
		confidence = math.Min(0.5-marginOfSafety/2, 0.95)
	}

	rationale := fmt.Sprintf(
		"intrinsic value %.0f vs market cap %.0f, margin of safety %.2f, quality %d/6",
		intrinsic, f.MarketCap, marginOfSafety, quality,
	)

	prompt := fmt.Sprintf("Valuation review for %s as of %s: %s", snap.Ticker, snap.Date.Format("2006-01-02"), rationale)
	result, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn().Err(err).Str("ticker", snap.Ticker).Msg("generator failed")
		return types.NeutralSignal(snap.Ticker, snap.Date, a.ID(), "language model unavailable: "+err.Error())
	}

	switch result.Stance {
	case llm.StanceBullish:
		action = types.ActionBuy
	case llm.StanceBearish:
		action = types.ActionSell
	case llm.StanceNeutral:
		action = types.ActionHold
	}
	if result.Confidence > 0 {
		confidence = result.Confidence
	}
	if result.Rationale != "" {
		rationale = rationale + "; " + result.Rationale
	}
	return types.NewSignal(snap.Ticker, snap.Date, a.ID(), action, confidence, rationale)
}

func intrinsicValue(fcf float64) float64 {
	if fcf <= 0 {
		return 0
	}
	present := 0.0
	for year := 1; year <= dcfProjectionYears; year++ {
		present += fcf * math.Pow(1+dcfGrowthRate, float64(year)) / math.Pow(1+dcfDiscountRate, float64(year))
	}
	terminal := fcf * math.Pow(1+dcfGrowthRate, dcfProjectionYears) * dcfTerminalMultiple /
		math.Pow(1+dcfDiscountRate, dcfProjectionYears)
	return present + terminal
}
