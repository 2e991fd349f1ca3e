package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"hedgesim/types"
)

const getAssetByTickerSQL = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	row := db.conn.QueryRow(ctx, getAssetByTickerSQL, ticker)

	var asset types.Asset
	err := row.Scan(&asset.Id, &asset.Ticker, &asset.Name, &asset.Type, &asset.CreatedAt, &asset.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

const getDailyBarsSQL = `
SELECT asset_id, day, open, high, low, close, volume
FROM daily_bars
WHERE asset_id = $1 AND day BETWEEN $2 AND $3
ORDER BY day ASC`

type barRow struct {
	AssetID int
	Day     time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  decimal.Decimal
}

// GetBars returns the daily bars for an asset in [start, end], ordered by day.
func (db *Database) GetBars(ctx context.Context, assetId int, ticker string, start, end time.Time) ([]types.Bar, error) {
	rows, err := db.conn.Query(ctx, getDailyBarsSQL, assetId, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var daos []barRow
	for rows.Next() {
		var r barRow
		if err := rows.Scan(&r.AssetID, &r.Day, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, err
		}
		daos = append(daos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(daos) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(daos, ticker), nil
}

func convertBars(daos []barRow, ticker string) []types.Bar {
	var bars []types.Bar
	for _, dao := range daos {
		bars = append(bars, types.Bar{
			AssetId: dao.AssetID,
			Ticker:  ticker,
			Date:    dao.Day.UTC(),
			Open:    dao.Open,
			High:    dao.High,
			Low:     dao.Low,
			Close:   dao.Close,
			Volume:  dao.Volume,
		})
	}
	return bars
}
