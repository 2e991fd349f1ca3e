package engine

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"hedgesim/internal/config"
	"hedgesim/types"
)

// Limits are the portfolio-level exposure constraints applied to every sized
// decision before execution. The risk layer scales quantities down rather
// than rejecting outright; only the circuit breaker, the short-selling
// switch and a cap with no room left veto a decision entirely.
type Limits struct {
	maxPositionValue decimal.Decimal // zero disables
	maxPositionPct   decimal.Decimal
	maxGrossPct      decimal.Decimal
	maxDailyLossPct  decimal.Decimal
	allowShort       bool
	log              zerolog.Logger
}

func NewLimits(cfg config.RiskConfig, log zerolog.Logger) *Limits {
	return &Limits{
		maxPositionValue: decimal.NewFromFloat(cfg.MaxPositionValue),
		maxPositionPct:   decimal.NewFromFloat(cfg.MaxPositionPct),
		maxGrossPct:      decimal.NewFromFloat(cfg.MaxGrossExposurePct),
		maxDailyLossPct:  decimal.NewFromFloat(cfg.MaxDailyLossPct),
		allowShort:       cfg.AllowShort,
		log:              log.With().Str("component", "risk").Logger(),
	}
}

// Apply constrains decision against the current account view and the run's
// peak equity. The returned decision never exceeds the requested quantity and
// never flips direction. A non-empty reason means the decision was vetoed
// outright; the caller records it as a rejected order.
func (l *Limits) Apply(decision types.Decision, price decimal.Decimal, view types.PortfolioView, peakEquity decimal.Decimal) (types.Decision, string) {
	if decision.Quantity.LessThanOrEqual(decimal.Zero) || decision.Action == types.ActionHold {
		return hold(decision), ""
	}

	if decision.Action == types.ActionShort && !l.allowShort {
		l.log.Debug().Str("ticker", decision.Ticker).Msg("short selling disabled")
		return hold(decision), "risk veto: short selling disabled"
	}

	// Reducing trades always pass: they only shed exposure.
	if decision.Action == types.ActionSell || decision.Action == types.ActionCover {
		return decision, ""
	}

	if l.circuitBreakerTripped(view, peakEquity) {
		l.log.Warn().
			Str("ticker", decision.Ticker).
			Str("equity", view.TotalValue().String()).
			Str("peak", peakEquity.String()).
			Msg("circuit breaker tripped, blocking new exposure")
		return hold(decision), fmt.Sprintf("risk veto: drawdown from peak %s exceeds %s",
			peakEquity.String(), l.maxDailyLossPct.String())
	}

	qty := decision.Quantity
	qty = l.capPositionValue(qty, decision.Ticker, price, view)
	qty = l.capGrossExposure(qty, price, view)
	if qty.LessThanOrEqual(decimal.Zero) {
		return hold(decision), "risk veto: exposure limits leave no room"
	}
	if qty.LessThan(decision.Quantity) {
		l.log.Debug().
			Str("ticker", decision.Ticker).
			Str("requested", decision.Quantity.String()).
			Str("approved", qty.String()).
			Msg("scaled order down to limits")
	}
	decision.Quantity = qty
	return decision, ""
}

func (l *Limits) circuitBreakerTripped(view types.PortfolioView, peakEquity decimal.Decimal) bool {
	if l.maxDailyLossPct.LessThanOrEqual(decimal.Zero) || peakEquity.LessThanOrEqual(decimal.Zero) {
		return false
	}
	drawdown := peakEquity.Sub(view.TotalValue()).Div(peakEquity)
	return drawdown.GreaterThan(l.maxDailyLossPct)
}

func (l *Limits) capPositionValue(qty decimal.Decimal, ticker string, price decimal.Decimal, view types.PortfolioView) decimal.Decimal {
	limit := l.maxPositionPct.Mul(view.TotalValue())
	if l.maxPositionValue.IsPositive() && l.maxPositionValue.LessThan(limit) {
		limit = l.maxPositionValue
	}
	if limit.LessThanOrEqual(decimal.Zero) {
		return qty
	}
	current := view.Positions[ticker].MarketValue().Abs()
	room := limit.Sub(current)
	if room.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	maxQty := room.Div(price).Floor()
	if maxQty.LessThan(qty) {
		return maxQty
	}
	return qty
}

func (l *Limits) capGrossExposure(qty decimal.Decimal, price decimal.Decimal, view types.PortfolioView) decimal.Decimal {
	if l.maxGrossPct.LessThanOrEqual(decimal.Zero) {
		return qty
	}
	limit := l.maxGrossPct.Mul(view.TotalValue())
	room := limit.Sub(view.GrossExposure())
	if room.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	maxQty := room.Div(price).Floor()
	if maxQty.LessThan(qty) {
		return maxQty
	}
	return qty
}

func hold(decision types.Decision) types.Decision {
	decision.Action = types.ActionHold
	decision.Quantity = decimal.Zero
	return decision
}
