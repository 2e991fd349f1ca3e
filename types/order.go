package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderFilled   OrderStatus = "ORDER_FILLED"
	OrderRejected OrderStatus = "ORDER_REJECTED"
)

// Order is the record of one simulated execution attempt. Immutable after
// creation; appended to the portfolio's trade history in (date, ticker) order.
type Order struct {
	ID         string
	Ticker     string
	Date       time.Time
	Action     Action
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
	Status     OrderStatus
	// RejectReason is set only on rejected orders.
	RejectReason string
	// RealizedPnL is set on fills that reduce an existing position.
	RealizedPnL decimal.Decimal
}
