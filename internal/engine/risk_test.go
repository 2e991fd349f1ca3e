package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"hedgesim/internal/config"
	"hedgesim/types"
)

func testView(cash string, positions map[string]types.Position) types.PortfolioView {
	return types.PortfolioView{
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Cash:      d(cash),
		Positions: positions,
	}
}

func buyDecision(quantity string) types.Decision {
	return types.Decision{
		Ticker:   "AAPL",
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Action:   types.ActionBuy,
		Quantity: d(quantity),
	}
}

func TestLimitsScaleDownToPositionCap(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      0.20,
		MaxGrossExposurePct: 1.0,
	}, zerolog.Nop())

	view := testView("1000", nil)
	got, reason := limits.Apply(buyDecision("9"), d("100"), view, d("1000"))

	// 20% of 1000 equity is 200, so at price 100 at most 2 shares. A
	// scale-down is an approval, not a veto.
	assert.Empty(t, reason)
	assert.Equal(t, types.ActionBuy, got.Action)
	assert.True(t, got.Quantity.Equal(d("2")), "quantity = %s", got.Quantity)
}

func TestLimitsApproveWithinCaps(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      1.0,
		MaxGrossExposurePct: 1.0,
	}, zerolog.Nop())

	got, reason := limits.Apply(buyDecision("9"), d("100"), testView("1000", nil), d("1000"))
	assert.Empty(t, reason)
	assert.True(t, got.Quantity.Equal(d("9")), "quantity = %s", got.Quantity)
}

func TestLimitsNeverIncreaseQuantity(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      0.5,
		MaxGrossExposurePct: 2.0,
	}, zerolog.Nop())

	for _, qty := range []string{"1", "3", "7", "50"} {
		got, _ := limits.Apply(buyDecision(qty), d("10"), testView("1000", nil), d("1000"))
		assert.True(t, got.Quantity.LessThanOrEqual(d(qty)),
			"requested %s, approved %s", qty, got.Quantity)
		assert.Contains(t, []types.Action{types.ActionBuy, types.ActionHold}, got.Action)
	}
}

func TestLimitsAbsoluteValueCap(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionValue:    150,
		MaxPositionPct:      1.0,
		MaxGrossExposurePct: 1.0,
	}, zerolog.Nop())

	got, reason := limits.Apply(buyDecision("9"), d("100"), testView("1000", nil), d("1000"))
	assert.Empty(t, reason)
	assert.True(t, got.Quantity.Equal(d("1")), "quantity = %s", got.Quantity)
}

func TestLimitsCircuitBreaker(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      1.0,
		MaxGrossExposurePct: 1.0,
		MaxDailyLossPct:     0.05,
	}, zerolog.Nop())

	// Equity 900 off a peak of 1000 is a 10% drawdown.
	view := testView("900", nil)
	peak := d("1000")

	got, reason := limits.Apply(buyDecision("5"), d("100"), view, peak)
	assert.Equal(t, types.ActionHold, got.Action)
	assert.True(t, got.Quantity.IsZero())
	assert.Contains(t, reason, "risk veto")

	// Reducing exposure stays allowed.
	sell := types.Decision{Ticker: "AAPL", Action: types.ActionSell, Quantity: d("5")}
	got, reason = limits.Apply(sell, d("100"), view, peak)
	assert.Empty(t, reason)
	assert.Equal(t, types.ActionSell, got.Action)
	assert.True(t, got.Quantity.Equal(d("5")))
}

func TestLimitsShortDisabled(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      1.0,
		MaxGrossExposurePct: 1.0,
		AllowShort:          false,
	}, zerolog.Nop())

	short := types.Decision{Ticker: "AAPL", Action: types.ActionShort, Quantity: d("5")}
	got, reason := limits.Apply(short, d("100"), testView("1000", nil), d("1000"))
	assert.Equal(t, types.ActionHold, got.Action)
	assert.Contains(t, reason, "short selling disabled")
}

func TestLimitsGrossExposureCap(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      1.0,
		MaxGrossExposurePct: 1.0,
	}, zerolog.Nop())

	// 900 already deployed of a 1000 equity book leaves room for 1 share at 100.
	positions := map[string]types.Position{
		"MSFT": {Ticker: "MSFT", Quantity: d("9"), AvgCost: d("100"), LastPrice: d("100")},
	}
	view := testView("100", positions)

	got, reason := limits.Apply(buyDecision("5"), d("100"), view, d("1000"))
	assert.Empty(t, reason)
	assert.True(t, got.Quantity.Equal(d("1")), "quantity = %s", got.Quantity)
}

func TestLimitsVetoWhenNoRoomLeft(t *testing.T) {
	limits := NewLimits(config.RiskConfig{
		MaxPositionPct:      0.20,
		MaxGrossExposurePct: 1.0,
	}, zerolog.Nop())

	// AAPL already sits at the 20% cap of a 1000 equity book.
	positions := map[string]types.Position{
		"AAPL": {Ticker: "AAPL", Quantity: d("2"), AvgCost: d("100"), LastPrice: d("100")},
	}
	got, reason := limits.Apply(buyDecision("5"), d("100"), testView("800", positions), d("1000"))
	assert.Equal(t, types.ActionHold, got.Action)
	assert.True(t, got.Quantity.IsZero())
	assert.Contains(t, reason, "risk veto")
}

func TestCommissionModel(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.CommissionConfig
		quantity string
		price    string
		want     string
	}{
		{"flat only", config.CommissionConfig{Flat: 1}, "9", "100", "1"},
		{"flat plus rate", config.CommissionConfig{Flat: 1, Rate: 0.001}, "10", "100", "2"},
		{"min clamp", config.CommissionConfig{Rate: 0.0001, MinFee: 5}, "10", "100", "5"},
		{"max clamp", config.CommissionConfig{Flat: 1, Rate: 0.01, MaxFee: 3}, "100", "100", "3"},
		{"free", config.CommissionConfig{}, "10", "100", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewCommission(tt.cfg)
			got := model.Fee(d(tt.quantity), d(tt.price))
			assert.True(t, got.Equal(d(tt.want)), "fee = %s, want %s", got, tt.want)
		})
	}
}

func TestAllocatorSizing(t *testing.T) {
	commission := NewCommission(config.CommissionConfig{Flat: 1})
	alloc := NewAllocator(commission, false, 0.2)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("buy deploys free cash", func(t *testing.T) {
		verdict := Verdict{Action: types.ActionBuy, Confidence: 0.8}
		got := alloc.Size(verdict, "AAPL", date, d("100"), testView("1000", nil), nil)
		assert.Equal(t, types.ActionBuy, got.Action)
		assert.True(t, got.Quantity.Equal(d("9")), "quantity = %s", got.Quantity)
	})

	t.Run("unaffordable buy yields zero", func(t *testing.T) {
		verdict := Verdict{Action: types.ActionBuy, Confidence: 0.8}
		got := alloc.Size(verdict, "AAPL", date, d("100"), testView("50", nil), nil)
		assert.True(t, got.Quantity.IsZero())
	})

	t.Run("sell liquidates full position", func(t *testing.T) {
		positions := map[string]types.Position{
			"AAPL": {Ticker: "AAPL", Quantity: d("9"), AvgCost: d("100"), LastPrice: d("100")},
		}
		verdict := Verdict{Action: types.ActionSell, Confidence: 0.7}
		got := alloc.Size(verdict, "AAPL", date, d("100"), testView("99", positions), nil)
		assert.Equal(t, types.ActionSell, got.Action)
		assert.True(t, got.Quantity.Equal(d("9")))
	})

	t.Run("bearish with no position and shorting off holds", func(t *testing.T) {
		verdict := Verdict{Action: types.ActionSell, Confidence: 0.7}
		got := alloc.Size(verdict, "AAPL", date, d("100"), testView("1000", nil), nil)
		assert.Equal(t, types.ActionHold, got.Action)
		assert.True(t, got.Quantity.IsZero())
	})

	t.Run("bearish opens short when enabled", func(t *testing.T) {
		shortAlloc := NewAllocator(commission, true, 0.2)
		verdict := Verdict{Action: types.ActionSell, Confidence: 0.7}
		got := shortAlloc.Size(verdict, "AAPL", date, d("100"), testView("1000", nil), nil)
		assert.Equal(t, types.ActionShort, got.Action)
		assert.True(t, got.Quantity.Equal(d("2")), "quantity = %s", got.Quantity)
	})

	t.Run("bullish on short book covers", func(t *testing.T) {
		positions := map[string]types.Position{
			"AAPL": {Ticker: "AAPL", Quantity: d("-5"), AvgCost: d("100"), LastPrice: d("100")},
		}
		verdict := Verdict{Action: types.ActionBuy, Confidence: 0.8}
		got := alloc.Size(verdict, "AAPL", date, d("100"), testView("1500", positions), nil)
		assert.Equal(t, types.ActionCover, got.Action)
		assert.True(t, got.Quantity.Equal(d("5")))
	})
}
