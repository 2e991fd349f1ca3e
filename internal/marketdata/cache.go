package marketdata

import (
	"context"
	"sync"
	"time"

	"hedgesim/types"
)

// CachedProvider memoizes per-ticker series for a fixed run range so the
// date loop's repeated requests are served from memory after the first fetch.
// Safe for concurrent readers.
type CachedProvider struct {
	inner Provider
	start time.Time
	end   time.Time

	mu           sync.Mutex
	bars         map[string][]types.Bar
	insider      map[string][]types.InsiderTrade
	news         map[string][]types.CompanyNews
	fundamentals map[string]map[int64]*types.Fundamentals
}

// NewCachedProvider wraps inner with a cache scoped to [start, end], the full
// range of the run.
func NewCachedProvider(inner Provider, start, end time.Time) *CachedProvider {
	return &CachedProvider{
		inner:        inner,
		start:        start,
		end:          end,
		bars:         make(map[string][]types.Bar),
		insider:      make(map[string][]types.InsiderTrade),
		news:         make(map[string][]types.CompanyNews),
		fundamentals: make(map[string]map[int64]*types.Fundamentals),
	}
}

func (c *CachedProvider) GetBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, ok := c.bars[ticker]
	if !ok {
		fetched, err := c.inner.GetBars(ctx, ticker, c.start, c.end)
		if err != nil {
			return nil, err
		}
		c.bars[ticker] = fetched
		all = fetched
	}

	var out []types.Bar
	for _, bar := range all {
		if !bar.Date.Before(start) && !bar.Date.After(end) {
			out = append(out, bar)
		}
	}
	return out, nil
}

func (c *CachedProvider) GetFundamentals(ctx context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byDate, ok := c.fundamentals[ticker]
	if !ok {
		byDate = make(map[int64]*types.Fundamentals)
		c.fundamentals[ticker] = byDate
	}
	key := asOf.Unix()
	if f, ok := byDate[key]; ok {
		return f, nil
	}

	f, err := c.inner.GetFundamentals(ctx, ticker, asOf)
	if err != nil {
		return nil, err
	}
	byDate[key] = f
	return f, nil
}

func (c *CachedProvider) GetInsiderTrades(ctx context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, ok := c.insider[ticker]
	if !ok {
		fetched, err := c.inner.GetInsiderTrades(ctx, ticker, c.start, c.end)
		if err != nil {
			return nil, err
		}
		c.insider[ticker] = fetched
		all = fetched
	}

	var out []types.InsiderTrade
	for _, tr := range all {
		if !tr.FilingDate.Before(start) && !tr.FilingDate.After(end) {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (c *CachedProvider) GetCompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, ok := c.news[ticker]
	if !ok {
		fetched, err := c.inner.GetCompanyNews(ctx, ticker, c.start, c.end)
		if err != nil {
			return nil, err
		}
		c.news[ticker] = fetched
		all = fetched
	}

	var out []types.CompanyNews
	for _, n := range all {
		if !n.Date.Before(start) && !n.Date.After(end) {
			out = append(out, n)
		}
	}
	return out, nil
}
