package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hedgesim/types"
)

var (
	ErrInsufficientCash   = errors.New("portfolio: insufficient cash")
	ErrInsufficientShares = errors.New("portfolio: insufficient shares")
	ErrNoShortPosition    = errors.New("portfolio: no short position to cover")
)

// Portfolio is the single mutable account state of a run. It is owned by the
// engine goroutine and never shared; everything else sees read-only views.
type Portfolio struct {
	cash      decimal.Decimal
	positions map[string]*types.Position
	orders    []types.Order
	equity    []types.EquityPoint
}

func NewPortfolio(initialCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		cash:      initialCash,
		positions: make(map[string]*types.Position),
	}
}

func (p *Portfolio) Cash() decimal.Decimal { return p.cash }

// Position returns the current holding for ticker, or a zero position.
func (p *Portfolio) Position(ticker string) types.Position {
	if pos, ok := p.positions[ticker]; ok {
		return *pos
	}
	return types.Position{Ticker: ticker, Quantity: decimal.Zero, AvgCost: decimal.Zero, LastPrice: decimal.Zero}
}

// View builds a read-only snapshot of the account as of date.
func (p *Portfolio) View(date time.Time) types.PortfolioView {
	positions := make(map[string]types.Position, len(p.positions))
	for ticker, pos := range p.positions {
		positions[ticker] = *pos
	}
	return types.PortfolioView{Date: date, Cash: p.cash, Positions: positions}
}

// MarkToMarket updates the last traded price for ticker. Tickers without a
// bar on a given date keep their previous mark.
func (p *Portfolio) MarkToMarket(ticker string, price decimal.Decimal) {
	if pos, ok := p.positions[ticker]; ok {
		pos.LastPrice = price
	}
}

// SnapshotEquity appends one equity curve entry for date.
func (p *Portfolio) SnapshotEquity(date time.Time) types.EquityPoint {
	positionsValue := decimal.Zero
	for _, pos := range p.positions {
		positionsValue = positionsValue.Add(pos.MarketValue())
	}
	point := types.EquityPoint{
		Date:           date,
		TotalValue:     p.cash.Add(positionsValue),
		Cash:           p.cash,
		PositionsValue: positionsValue,
	}
	p.equity = append(p.equity, point)
	return point
}

func (p *Portfolio) EquityCurve() []types.EquityPoint { return p.equity }
func (p *Portfolio) Orders() []types.Order            { return p.orders }

// RecordOrder appends an order to the trade history, filled or rejected.
func (p *Portfolio) RecordOrder(order types.Order) {
	p.orders = append(p.orders, order)
}

// ApplyFill mutates cash and positions for a filled order and returns the
// realized profit for position-reducing fills, net of commission. The caller
// has already verified the fill is affordable and coverable; a violation here
// is a programming error and returns one of the sentinel errors unchanged.
func (p *Portfolio) ApplyFill(order types.Order) (decimal.Decimal, error) {
	switch order.Action {
	case types.ActionBuy:
		return decimal.Zero, p.openLong(order)
	case types.ActionSell:
		return p.closeLong(order)
	case types.ActionShort:
		return decimal.Zero, p.openShort(order)
	case types.ActionCover:
		return p.closeShort(order)
	default:
		return decimal.Zero, fmt.Errorf("portfolio: cannot fill action %s", order.Action)
	}
}

func (p *Portfolio) openLong(order types.Order) error {
	cost := order.Quantity.Mul(order.Price).Add(order.Commission)
	if p.cash.LessThan(cost) {
		return ErrInsufficientCash
	}

	pos := p.ensure(order.Ticker)
	if pos.Quantity.IsNegative() {
		return fmt.Errorf("portfolio: %s is short, cover before buying", order.Ticker)
	}
	pos.AvgCost = weightedAvg(pos.Quantity, pos.AvgCost, order.Quantity, order.Price)
	pos.Quantity = pos.Quantity.Add(order.Quantity)
	pos.LastPrice = order.Price
	p.cash = p.cash.Sub(cost)
	return nil
}

func (p *Portfolio) closeLong(order types.Order) (decimal.Decimal, error) {
	pos, ok := p.positions[order.Ticker]
	if !ok || pos.Quantity.LessThan(order.Quantity) {
		return decimal.Zero, ErrInsufficientShares
	}

	proceeds := order.Quantity.Mul(order.Price).Sub(order.Commission)
	realized := order.Quantity.Mul(order.Price.Sub(pos.AvgCost)).Sub(order.Commission)

	pos.Quantity = pos.Quantity.Sub(order.Quantity)
	pos.LastPrice = order.Price
	if pos.Quantity.IsZero() {
		delete(p.positions, order.Ticker)
	}
	p.cash = p.cash.Add(proceeds)
	return realized, nil
}

func (p *Portfolio) openShort(order types.Order) error {
	pos := p.ensure(order.Ticker)
	if pos.Quantity.IsPositive() {
		return fmt.Errorf("portfolio: %s is long, sell before shorting", order.Ticker)
	}

	sold := order.Quantity.Neg()
	pos.AvgCost = weightedAvg(pos.Quantity.Abs(), pos.AvgCost, order.Quantity, order.Price)
	pos.Quantity = pos.Quantity.Add(sold)
	pos.LastPrice = order.Price
	p.cash = p.cash.Add(order.Quantity.Mul(order.Price)).Sub(order.Commission)
	return nil
}

func (p *Portfolio) closeShort(order types.Order) (decimal.Decimal, error) {
	pos, ok := p.positions[order.Ticker]
	if !ok || !pos.Quantity.IsNegative() || pos.Quantity.Abs().LessThan(order.Quantity) {
		return decimal.Zero, ErrNoShortPosition
	}

	cost := order.Quantity.Mul(order.Price).Add(order.Commission)
	if p.cash.LessThan(cost) {
		return decimal.Zero, ErrInsufficientCash
	}
	realized := order.Quantity.Mul(pos.AvgCost.Sub(order.Price)).Sub(order.Commission)

	pos.Quantity = pos.Quantity.Add(order.Quantity)
	pos.LastPrice = order.Price
	if pos.Quantity.IsZero() {
		delete(p.positions, order.Ticker)
	}
	p.cash = p.cash.Sub(cost)
	return realized, nil
}

func (p *Portfolio) ensure(ticker string) *types.Position {
	pos, ok := p.positions[ticker]
	if !ok {
		pos = &types.Position{Ticker: ticker, Quantity: decimal.Zero, AvgCost: decimal.Zero}
		p.positions[ticker] = pos
	}
	return pos
}

// weightedAvg blends an existing average cost with a new fill at price.
func weightedAvg(quantity, avgCost, fillQuantity, fillPrice decimal.Decimal) decimal.Decimal {
	total := quantity.Add(fillQuantity)
	if total.IsZero() {
		return decimal.Zero
	}
	return quantity.Mul(avgCost).Add(fillQuantity.Mul(fillPrice)).Div(total)
}
