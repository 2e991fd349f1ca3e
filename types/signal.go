package types

import (
	"time"
)

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionShort Action = "SHORT"
	ActionCover Action = "COVER"
)

// Bullish reports whether the action adds long exposure.
func (a Action) Bullish() bool {
	return a == ActionBuy || a == ActionCover
}

// Bearish reports whether the action reduces exposure or adds short exposure.
func (a Action) Bearish() bool {
	return a == ActionSell || a == ActionShort
}

// Signal is one analyst's opinion for a ticker on a date. Produced fresh each
// date, never mutated.
type Signal struct {
	Ticker     string
	Date       time.Time
	AnalystID  string
	Action     Action
	Confidence float64 // [0,1]
	Rationale  string
}

func NewSignal(ticker string, date time.Time, analystID string, action Action, confidence float64, rationale string) Signal {
	return Signal{
		Ticker:     ticker,
		Date:       date,
		AnalystID:  analystID,
		Action:     action,
		Confidence: confidence,
		Rationale:  rationale,
	}
}

// NeutralSignal is the fallback signal for a failed or timed out analyst.
func NeutralSignal(ticker string, date time.Time, analystID, reason string) Signal {
	return NewSignal(ticker, date, analystID, ActionHold, 0, reason)
}
