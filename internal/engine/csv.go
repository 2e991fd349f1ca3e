package engine

import (
	"encoding/csv"
	"fmt"
	"os"

	"hedgesim/types"
)

// WriteTradesCSV exports the full trade history, rejections included, to path.
func WriteTradesCSV(path string, orders []types.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "date", "ticker", "action", "quantity", "price", "commission", "status", "reject_reason", "realized_pnl"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write trades csv: %w", err)
	}
	for _, order := range orders {
		record := []string{
			order.ID,
			order.Date.Format("2006-01-02"),
			order.Ticker,
			string(order.Action),
			order.Quantity.String(),
			order.Price.String(),
			order.Commission.String(),
			string(order.Status),
			order.RejectReason,
			order.RealizedPnL.String(),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write trades csv: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
