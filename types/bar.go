package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily price bar for a ticker. Immutable once fetched.
type Bar struct {
	AssetId int             `json:"id"`
	Ticker  string          `json:"ticker"`
	Date    time.Time       `json:"date"`
	Open    decimal.Decimal `json:"open"`
	High    decimal.Decimal `json:"high"`
	Low     decimal.Decimal `json:"low"`
	Close   decimal.Decimal `json:"close"`
	Volume  decimal.Decimal `json:"volume"`
}
