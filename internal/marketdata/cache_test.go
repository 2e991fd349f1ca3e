package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgesim/types"
)

type countingProvider struct {
	barCalls     int
	insiderCalls int
	newsCalls    int
	fundCalls    int
	bars         []types.Bar
}

func (p *countingProvider) GetBars(_ context.Context, ticker string, start, end time.Time) ([]types.Bar, error) {
	p.barCalls++
	return p.bars, nil
}

func (p *countingProvider) GetFundamentals(_ context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error) {
	p.fundCalls++
	return &types.Fundamentals{Ticker: ticker, ReportDate: asOf}, nil
}

func (p *countingProvider) GetInsiderTrades(_ context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error) {
	p.insiderCalls++
	return []types.InsiderTrade{{Ticker: ticker, FilingDate: start, TransactionShares: 100}}, nil
}

func (p *countingProvider) GetCompanyNews(_ context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error) {
	p.newsCalls++
	return nil, nil
}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func testBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{
			Ticker: "AAPL",
			Date:   day(i),
			Close:  decimal.NewFromInt(int64(100 + i)),
		}
	}
	return bars
}

func TestCachedProvider_BarsFetchedOnce(t *testing.T) {
	inner := &countingProvider{bars: testBars(5)}
	cached := NewCachedProvider(inner, day(0), day(4))
	ctx := context.Background()

	first, err := cached.GetBars(ctx, "AAPL", day(0), day(2))
	require.NoError(t, err)
	assert.Len(t, first, 3)

	second, err := cached.GetBars(ctx, "AAPL", day(0), day(4))
	require.NoError(t, err)
	assert.Len(t, second, 5)

	assert.Equal(t, 1, inner.barCalls, "second request should hit the cache")
}

func TestCachedProvider_WindowFiltering(t *testing.T) {
	inner := &countingProvider{bars: testBars(10)}
	cached := NewCachedProvider(inner, day(0), day(9))

	bars, err := cached.GetBars(context.Background(), "AAPL", day(3), day(6))
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.True(t, bars[0].Date.Equal(day(3)))
	assert.True(t, bars[3].Date.Equal(day(6)))
}

func TestCachedProvider_FundamentalsMemoizedPerDate(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, day(0), day(9))
	ctx := context.Background()

	_, err := cached.GetFundamentals(ctx, "AAPL", day(1))
	require.NoError(t, err)
	_, err = cached.GetFundamentals(ctx, "AAPL", day(1))
	require.NoError(t, err)
	_, err = cached.GetFundamentals(ctx, "AAPL", day(2))
	require.NoError(t, err)

	assert.Equal(t, 2, inner.fundCalls)
}

func TestBuildSnapshot_TruncatesAtDate(t *testing.T) {
	inner := &countingProvider{bars: testBars(8)}
	cached := NewCachedProvider(inner, day(0), day(7))

	snap, err := BuildSnapshot(context.Background(), cached, "AAPL", day(0), day(4))
	require.NoError(t, err)
	require.Len(t, snap.Bars, 5)
	for _, bar := range snap.Bars {
		assert.False(t, bar.Date.After(day(4)), "snapshot leaked a future bar: %v", bar.Date)
	}
	last, ok := snap.LatestBar()
	require.True(t, ok)
	assert.True(t, last.Date.Equal(day(4)))
}

func TestBuildSnapshot_NoBars(t *testing.T) {
	inner := &countingProvider{bars: nil}
	cached := NewCachedProvider(inner, day(0), day(7))

	_, err := BuildSnapshot(context.Background(), cached, "AAPL", day(0), day(4))
	assert.ErrorIs(t, err, ErrNoData)
}
