package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"hedgesim/internal/config"
	"hedgesim/types"
)

// CommissionModel prices the fee for one fill.
type CommissionModel interface {
	Flat() decimal.Decimal
	Rate() decimal.Decimal
	Fee(quantity, price decimal.Decimal) decimal.Decimal
}

// flatRateCommission is a flat fee plus a fraction of notional, optionally
// clamped to [min, max].
type flatRateCommission struct {
	flat decimal.Decimal
	rate decimal.Decimal
	min  decimal.Decimal
	max  decimal.Decimal
}

func NewCommission(cfg config.CommissionConfig) CommissionModel {
	return flatRateCommission{
		flat: decimal.NewFromFloat(cfg.Flat),
		rate: decimal.NewFromFloat(cfg.Rate),
		min:  decimal.NewFromFloat(cfg.MinFee),
		max:  decimal.NewFromFloat(cfg.MaxFee),
	}
}

func (c flatRateCommission) Flat() decimal.Decimal { return c.flat }
func (c flatRateCommission) Rate() decimal.Decimal { return c.rate }

func (c flatRateCommission) Fee(quantity, price decimal.Decimal) decimal.Decimal {
	fee := c.flat.Add(quantity.Mul(price).Mul(c.rate))
	if c.min.IsPositive() && fee.LessThan(c.min) {
		fee = c.min
	}
	if c.max.IsPositive() && fee.GreaterThan(c.max) {
		fee = c.max
	}
	return fee
}

// orderNamespace seeds the deterministic order IDs. Runs over identical input
// produce identical IDs.
var orderNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Executor simulates fills against the portfolio at the day's closing price.
// Orders fill completely or not at all; a rejection records an order with the
// reason and leaves the account untouched.
type Executor struct {
	commission CommissionModel
	log        zerolog.Logger
}

func NewExecutor(commission CommissionModel, log zerolog.Logger) *Executor {
	return &Executor{
		commission: commission,
		log:        log.With().Str("component", "execution").Logger(),
	}
}

// Execute attempts to fill decision at price against portfolio. The resulting
// order, filled or rejected, is recorded in the portfolio's trade history.
func (e *Executor) Execute(decision types.Decision, price decimal.Decimal, portfolio *Portfolio) types.Order {
	order := types.Order{
		ID:         orderID(decision, price),
		Ticker:     decision.Ticker,
		Date:       decision.Date,
		Action:     decision.Action,
		Quantity:   decision.Quantity,
		Price:      price,
		Commission: e.commission.Fee(decision.Quantity, price),
		Status:     types.OrderFilled,
	}

	if reason := e.check(decision, price, order.Commission, portfolio); reason != "" {
		order.Status = types.OrderRejected
		order.RejectReason = reason
		order.Commission = decimal.Zero
		e.log.Debug().Str("ticker", order.Ticker).Str("reason", reason).Msg("order rejected")
		portfolio.RecordOrder(order)
		return order
	}

	realized, err := portfolio.ApplyFill(order)
	if err != nil {
		order.Status = types.OrderRejected
		order.RejectReason = err.Error()
		order.Commission = decimal.Zero
	} else {
		order.RealizedPnL = realized
	}
	portfolio.RecordOrder(order)
	return order
}

func (e *Executor) check(decision types.Decision, price, commission decimal.Decimal, portfolio *Portfolio) string {
	switch decision.Action {
	case types.ActionBuy, types.ActionCover:
		cost := decision.Quantity.Mul(price).Add(commission)
		if portfolio.Cash().LessThan(cost) {
			return fmt.Sprintf("insufficient cash: need %s, have %s", cost.StringFixed(2), portfolio.Cash().StringFixed(2))
		}
		if decision.Action == types.ActionCover {
			short := portfolio.Position(decision.Ticker).Quantity
			if !short.IsNegative() || short.Abs().LessThan(decision.Quantity) {
				return "no short position to cover"
			}
		}
	case types.ActionSell:
		held := portfolio.Position(decision.Ticker).Quantity
		if held.LessThan(decision.Quantity) {
			return fmt.Sprintf("insufficient shares: need %s, have %s", decision.Quantity.String(), held.String())
		}
	}
	return ""
}

func orderID(decision types.Decision, price decimal.Decimal) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%s",
		decision.Date.Format("2006-01-02"), decision.Ticker, decision.Action, decision.Quantity.String(), price.String())
	return uuid.NewSHA1(orderNamespace, []byte(key)).String()
}
