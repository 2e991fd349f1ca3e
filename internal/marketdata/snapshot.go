package marketdata

import (
	"context"
	"time"

	"hedgesim/types"
)

// Snapshot is the data visible to an analyst for one ticker on one date. It
// never contains anything dated after Date: snapshots are the structural
// guard against look-ahead.
type Snapshot struct {
	Ticker        string
	Date          time.Time
	Bars          []types.Bar // ascending, all dated <= Date
	Fundamentals  *types.Fundamentals
	InsiderTrades []types.InsiderTrade
	News          []types.CompanyNews
}

// LatestBar returns the most recent bar in the snapshot, or false when the
// snapshot holds no bars.
func (s *Snapshot) LatestBar() (types.Bar, bool) {
	if len(s.Bars) == 0 {
		return types.Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns the snapshot's close prices as floats, oldest first.
func (s *Snapshot) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		out[i] = bar.Close.InexactFloat64()
	}
	return out
}

// BuildSnapshot assembles the analyst-visible view of ticker as of date. Bars
// are required: no bar up to date means no snapshot (ErrNoData). The other
// series are optional and absent entries stay nil.
func BuildSnapshot(ctx context.Context, p Provider, ticker string, start, date time.Time) (*Snapshot, error) {
	bars, err := p.GetBars(ctx, ticker, start, date)
	if err != nil {
		return nil, err
	}
	// Drop anything a provider returned past the requested date.
	for len(bars) > 0 && bars[len(bars)-1].Date.After(date) {
		bars = bars[:len(bars)-1]
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	snap := &Snapshot{
		Ticker: ticker,
		Date:   date,
		Bars:   bars,
	}

	if f, err := p.GetFundamentals(ctx, ticker, date); err == nil {
		snap.Fundamentals = f
	}
	if trades, err := p.GetInsiderTrades(ctx, ticker, start, date); err == nil {
		snap.InsiderTrades = trades
	}
	if news, err := p.GetCompanyNews(ctx, ticker, start, date); err == nil {
		snap.News = news
	}
	return snap, nil
}
