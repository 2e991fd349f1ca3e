package marketdata

import (
	"context"
	"errors"
	"time"

	"hedgesim/types"
)

// ErrNoData signals absence of market data for a ticker/date. Callers treat it
// as a skip, never as a run abort.
var ErrNoData = errors.New("market data: no data")

// Provider supplies time-indexed market data. Absence is reported as empty
// results, not errors; only infrastructure failures surface as errors.
type Provider interface {
	GetBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error)
	GetFundamentals(ctx context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error)
	GetInsiderTrades(ctx context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error)
	GetCompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error)
}

// Store is the persistence interface the repository implements.
type Store interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error)
	GetBars(ctx context.Context, assetId int, ticker string, start, end time.Time) ([]types.Bar, error)
	GetFundamentals(ctx context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error)
	GetInsiderTrades(ctx context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error)
	GetCompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error)
}

// StoreProvider adapts a Store to the Provider contract: it resolves tickers
// to assets and maps the store's not-found sentinels to empty results.
type StoreProvider struct {
	store    Store
	notFound []error
}

func NewStoreProvider(store Store, notFound ...error) *StoreProvider {
	return &StoreProvider{store: store, notFound: notFound}
}

func (p *StoreProvider) absent(err error) bool {
	for _, sentinel := range p.notFound {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (p *StoreProvider) GetBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error) {
	asset, err := p.store.GetAssetByTicker(ctx, ticker)
	if err != nil {
		if p.absent(err) {
			return nil, nil
		}
		return nil, err
	}
	bars, err := p.store.GetBars(ctx, asset.Id, ticker, start, end)
	if err != nil {
		if p.absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return bars, nil
}

func (p *StoreProvider) GetFundamentals(ctx context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error) {
	f, err := p.store.GetFundamentals(ctx, ticker, asOf)
	if err != nil {
		if p.absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (p *StoreProvider) GetInsiderTrades(ctx context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error) {
	trades, err := p.store.GetInsiderTrades(ctx, ticker, start, end)
	if err != nil {
		if p.absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return trades, nil
}

func (p *StoreProvider) GetCompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error) {
	news, err := p.store.GetCompanyNews(ctx, ticker, start, end)
	if err != nil {
		if p.absent(err) {
			return nil, nil
		}
		return nil, err
	}
	return news, nil
}
