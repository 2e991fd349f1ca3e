package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgesim/internal/config"
	"hedgesim/types"
)

func testExecutor(cfg config.CommissionConfig) *Executor {
	return NewExecutor(NewCommission(cfg), zerolog.Nop())
}

func decision(action types.Action, quantity string) types.Decision {
	return types.Decision{
		Ticker:   "AAPL",
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Action:   action,
		Quantity: d(quantity),
	}
}

func TestExecutorFillsBuy(t *testing.T) {
	e := testExecutor(config.CommissionConfig{Flat: 1})
	p := NewPortfolio(d("1000"))

	order := e.Execute(decision(types.ActionBuy, "9"), d("100"), p)
	require.Equal(t, types.OrderFilled, order.Status)
	assert.True(t, order.Commission.Equal(d("1")))
	assert.True(t, p.Cash().Equal(d("99")), "cash = %s", p.Cash())
	assert.Len(t, p.Orders(), 1)
}

func TestExecutorRejectionLeavesStateUnchanged(t *testing.T) {
	e := testExecutor(config.CommissionConfig{Flat: 1})
	p := NewPortfolio(d("500"))

	order := e.Execute(decision(types.ActionBuy, "9"), d("100"), p)
	require.Equal(t, types.OrderRejected, order.Status)
	assert.Contains(t, order.RejectReason, "insufficient cash")
	assert.True(t, order.Commission.IsZero())

	assert.True(t, p.Cash().Equal(d("500")), "cash = %s", p.Cash())
	assert.True(t, p.Position("AAPL").Quantity.IsZero())
	// The rejection itself is still part of the trade history.
	require.Len(t, p.Orders(), 1)
	assert.Equal(t, types.OrderRejected, p.Orders()[0].Status)
}

func TestExecutorRejectsOversell(t *testing.T) {
	e := testExecutor(config.CommissionConfig{})
	p := NewPortfolio(d("1000"))
	e.Execute(decision(types.ActionBuy, "3"), d("100"), p)

	order := e.Execute(decision(types.ActionSell, "5"), d("100"), p)
	require.Equal(t, types.OrderRejected, order.Status)
	assert.Contains(t, order.RejectReason, "insufficient shares")
	assert.True(t, p.Position("AAPL").Quantity.Equal(d("3")))
}

func TestExecutorRecordsRealizedPnL(t *testing.T) {
	e := testExecutor(config.CommissionConfig{Flat: 1})
	p := NewPortfolio(d("1000"))

	e.Execute(decision(types.ActionBuy, "9"), d("100"), p)
	order := e.Execute(decision(types.ActionSell, "9"), d("110"), p)

	require.Equal(t, types.OrderFilled, order.Status)
	assert.True(t, order.RealizedPnL.Equal(d("89")), "realized = %s", order.RealizedPnL)
}

func TestOrderIDsAreDeterministic(t *testing.T) {
	dec := decision(types.ActionBuy, "9")
	first := orderID(dec, d("100"))
	second := orderID(dec, d("100"))
	assert.Equal(t, first, second)

	other := orderID(decision(types.ActionBuy, "8"), d("100"))
	assert.NotEqual(t, first, other)
}
