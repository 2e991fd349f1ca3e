package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the single resolved action for a ticker on a date, derived from
// the full set of analyst signals. Quantity is filled in by the allocator and
// may be scaled down by the risk layer before execution.
type Decision struct {
	Ticker   string
	Date     time.Time
	Action   Action
	Quantity decimal.Decimal
	Signals  []Signal
}
