package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"hedgesim/types"
)

// Allocator turns a verdict into a sized decision against the current account
// state. Buys deploy all free cash net of commission, sells liquidate the full
// position, and a bearish verdict with no long book opens a short sized to
// maxShortPct of equity when shorting is enabled.
type Allocator struct {
	commission  CommissionModel
	allowShort  bool
	maxShortPct decimal.Decimal
}

func NewAllocator(commission CommissionModel, allowShort bool, maxShortPct float64) *Allocator {
	return &Allocator{
		commission:  commission,
		allowShort:  allowShort,
		maxShortPct: decimal.NewFromFloat(maxShortPct),
	}
}

// Size resolves verdict into a concrete decision for ticker at price. A zero
// quantity decision means no order is placed.
func (a *Allocator) Size(verdict Verdict, ticker string, date time.Time, price decimal.Decimal, view types.PortfolioView, signals []types.Signal) types.Decision {
	decision := types.Decision{
		Ticker:   ticker,
		Date:     date,
		Action:   types.ActionHold,
		Quantity: decimal.Zero,
		Signals:  signals,
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decision
	}
	held := view.Positions[ticker].Quantity

	switch verdict.Action {
	case types.ActionBuy:
		if held.IsNegative() {
			// Bullish on a short book: buy back the whole short first.
			decision.Action = types.ActionCover
			decision.Quantity = held.Abs()
			return decision
		}
		qty := a.maxAffordable(view.Cash, price)
		if qty.IsPositive() {
			decision.Action = types.ActionBuy
			decision.Quantity = qty
		}
	case types.ActionSell:
		if held.IsPositive() {
			decision.Action = types.ActionSell
			decision.Quantity = held
			return decision
		}
		if a.allowShort && held.IsZero() {
			qty := view.TotalValue().Mul(a.maxShortPct).Div(price).Floor()
			if qty.IsPositive() {
				decision.Action = types.ActionShort
				decision.Quantity = qty
			}
		}
	}
	return decision
}

// maxAffordable is the largest whole-share quantity whose cost including
// commission fits in cash. The estimate from the flat fee alone can overshoot
// when fee clamps kick in, so it is walked down until the real cost fits.
func (a *Allocator) maxAffordable(cash, price decimal.Decimal) decimal.Decimal {
	spendable := cash.Sub(a.commission.Flat())
	if spendable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	qty := spendable.Div(price.Mul(decimal.NewFromInt(1).Add(a.commission.Rate()))).Floor()
	for qty.IsPositive() {
		cost := qty.Mul(price).Add(a.commission.Fee(qty, price))
		if cost.LessThanOrEqual(cash) {
			return qty
		}
		qty = qty.Sub(decimal.NewFromInt(1))
	}
	return decimal.Zero
}
