package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hedgesim/types"
)

const getFundamentalsSQL = `
SELECT ticker, report_date, market_cap, return_on_equity, net_margin,
       operating_margin, revenue_growth, earnings_growth, debt_to_equity,
       current_ratio, price_to_earnings, price_to_book, free_cash_flow,
       earnings_per_share, book_value_per_share
FROM fundamentals
WHERE ticker = $1 AND report_date <= $2
ORDER BY report_date DESC
LIMIT 1`

// GetFundamentals returns the latest reported metrics at or before asOf.
func (db *Database) GetFundamentals(ctx context.Context, ticker string, asOf time.Time) (*types.Fundamentals, error) {
	row := db.conn.QueryRow(ctx, getFundamentalsSQL, ticker, asOf)

	var f types.Fundamentals
	err := row.Scan(
		&f.Ticker, &f.ReportDate, &f.MarketCap, &f.ReturnOnEquity, &f.NetMargin,
		&f.OperatingMargin, &f.RevenueGrowth, &f.EarningsGrowth, &f.DebtToEquity,
		&f.CurrentRatio, &f.PriceToEarnings, &f.PriceToBook, &f.FreeCashFlow,
		&f.EarningsPerShare, &f.BookValuePerShare,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return &f, nil
}

const getInsiderTradesSQL = `
SELECT ticker, filing_date, transaction_shares
FROM insider_trades
WHERE ticker = $1 AND filing_date BETWEEN $2 AND $3
ORDER BY filing_date ASC`

func (db *Database) GetInsiderTrades(ctx context.Context, ticker string, start, end time.Time) ([]types.InsiderTrade, error) {
	rows, err := db.conn.Query(ctx, getInsiderTradesSQL, ticker, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []types.InsiderTrade
	for rows.Next() {
		var tr types.InsiderTrade
		if err := rows.Scan(&tr.Ticker, &tr.FilingDate, &tr.TransactionShares); err != nil {
			return nil, err
		}
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

const getCompanyNewsSQL = `
SELECT ticker, published_at, title, sentiment, source
FROM company_news
WHERE ticker = $1 AND published_at BETWEEN $2 AND $3
ORDER BY published_at ASC`

func (db *Database) GetCompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]types.CompanyNews, error) {
	rows, err := db.conn.Query(ctx, getCompanyNewsSQL, ticker, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var news []types.CompanyNews
	for rows.Next() {
		var n types.CompanyNews
		if err := rows.Scan(&n.Ticker, &n.Date, &n.Title, &n.Sentiment, &n.Source); err != nil {
			return nil, err
		}
		news = append(news, n)
	}
	return news, rows.Err()
}
