package types

import "time"

// Fundamentals is the latest reported financial metrics for a ticker as of a
// date. Ratio fields are zero when the source did not report them.
type Fundamentals struct {
	Ticker            string
	ReportDate        time.Time
	MarketCap         float64
	ReturnOnEquity    float64
	NetMargin         float64
	OperatingMargin   float64
	RevenueGrowth     float64
	EarningsGrowth    float64
	DebtToEquity      float64
	CurrentRatio      float64
	PriceToEarnings   float64
	PriceToBook       float64
	FreeCashFlow      float64
	EarningsPerShare  float64
	BookValuePerShare float64
}

// InsiderTrade is one reported insider transaction. Positive TransactionShares
// is a purchase, negative a disposal.
type InsiderTrade struct {
	Ticker            string
	FilingDate        time.Time
	TransactionShares float64
}

type NewsSentiment string

const (
	SentimentPositive NewsSentiment = "positive"
	SentimentNegative NewsSentiment = "negative"
	SentimentNeutral  NewsSentiment = "neutral"
)

// CompanyNews is one news article with a pre-scored sentiment label.
type CompanyNews struct {
	Ticker    string
	Date      time.Time
	Title     string
	Sentiment NewsSentiment
	Source    string
}
