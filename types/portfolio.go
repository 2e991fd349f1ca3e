package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the holding in a single ticker. Negative quantity is a short and
// only appears when short selling is enabled.
type Position struct {
	Ticker    string
	Quantity  decimal.Decimal
	AvgCost   decimal.Decimal
	LastPrice decimal.Decimal
}

// MarketValue is quantity times the last marked price.
func (p Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.LastPrice)
}

// PortfolioView is a read-only snapshot of account state handed to analysts,
// the allocator and the risk layer. The live portfolio is never exposed.
type PortfolioView struct {
	Date      time.Time
	Cash      decimal.Decimal
	Positions map[string]Position
}

// TotalValue is cash plus the marked value of every position.
func (v PortfolioView) TotalValue() decimal.Decimal {
	value := v.Cash
	for _, pos := range v.Positions {
		value = value.Add(pos.MarketValue())
	}
	return value
}

// GrossExposure is the sum of absolute position values, long and short alike.
func (v PortfolioView) GrossExposure() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range v.Positions {
		total = total.Add(pos.MarketValue().Abs())
	}
	return total
}

// EquityPoint is one entry of the equity curve, taken after all tickers for a
// date have been processed and marked to market.
type EquityPoint struct {
	Date           time.Time
	TotalValue     decimal.Decimal
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
}
