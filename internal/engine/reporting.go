package engine

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"hedgesim/types"
)

const annualTradingDays = 252

// Metrics summarize a completed run.
type Metrics struct {
	StartDate        time.Time
	EndDate          time.Time
	InitialCapital   decimal.Decimal
	FinalEquity      decimal.Decimal
	TotalReturn      float64 // fraction, e.g. 0.12 for +12%
	CAGR             float64
	AnnualizedVol    float64
	SharpeRatio      float64
	MaxDrawdown      float64 // fraction of peak, positive number
	TotalOrders      int
	FilledOrders     int
	RejectedOrders   int
	WinningTrades    int
	LosingTrades     int
	WinRate          float64
	TotalCommissions decimal.Decimal
}

// ComputeMetrics derives performance statistics from a run's equity curve and
// trade history. riskFreeRate is annual; it is spread over trading days for
// the Sharpe ratio.
func ComputeMetrics(result *Result, riskFreeRate float64) Metrics {
	m := Metrics{
		InitialCapital: result.InitialCapital,
		FinalEquity:    result.InitialCapital,
	}
	curve := result.EquityCurve
	if len(curve) == 0 {
		return m
	}

	m.StartDate = curve[0].Date
	m.EndDate = curve[len(curve)-1].Date
	m.FinalEquity = curve[len(curve)-1].TotalValue

	initial := result.InitialCapital.InexactFloat64()
	final := m.FinalEquity.InexactFloat64()
	if initial > 0 {
		m.TotalReturn = final/initial - 1
	}

	years := m.EndDate.Sub(m.StartDate).Hours() / 24 / 365.25
	if years > 0 && initial > 0 && final > 0 {
		m.CAGR = math.Pow(final/initial, 1/years) - 1
	}

	returns := dailyReturns(curve, initial)
	if len(returns) > 1 {
		std := stat.StdDev(returns, nil)
		m.AnnualizedVol = std * math.Sqrt(annualTradingDays)
		if std > 0 {
			excess := stat.Mean(returns, nil) - riskFreeRate/annualTradingDays
			m.SharpeRatio = excess / std * math.Sqrt(annualTradingDays)
		}
	}
	m.MaxDrawdown = maxDrawdown(curve, initial)

	for _, order := range result.Orders {
		m.TotalOrders++
		if order.Status == types.OrderRejected {
			m.RejectedOrders++
			continue
		}
		m.FilledOrders++
		m.TotalCommissions = m.TotalCommissions.Add(order.Commission)
		if order.Action == types.ActionSell || order.Action == types.ActionCover {
			if order.RealizedPnL.IsPositive() {
				m.WinningTrades++
			} else if order.RealizedPnL.IsNegative() {
				m.LosingTrades++
			}
		}
	}
	if closed := m.WinningTrades + m.LosingTrades; closed > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(closed)
	}
	return m
}

// dailyReturns includes the first day's move off initial capital.
func dailyReturns(curve []types.EquityPoint, initial float64) []float64 {
	returns := make([]float64, 0, len(curve))
	prev := initial
	for _, point := range curve {
		value := point.TotalValue.InexactFloat64()
		if prev > 0 {
			returns = append(returns, value/prev-1)
		}
		prev = value
	}
	return returns
}

func maxDrawdown(curve []types.EquityPoint, initial float64) float64 {
	peak := initial
	worst := 0.0
	for _, point := range curve {
		value := point.TotalValue.InexactFloat64()
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// WriteReport renders a plain text summary of the run.
func WriteReport(w io.Writer, m Metrics) {
	fmt.Fprintln(w, "==================== BACKTEST REPORT ====================")
	fmt.Fprintf(w, "Period:              %s to %s\n", m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Initial capital:     %s\n", m.InitialCapital.StringFixed(2))
	fmt.Fprintf(w, "Final equity:        %s\n", m.FinalEquity.StringFixed(2))
	fmt.Fprintf(w, "Total return:        %.2f%%\n", m.TotalReturn*100)
	fmt.Fprintf(w, "CAGR:                %.2f%%\n", m.CAGR*100)
	fmt.Fprintf(w, "Annualized vol:      %.2f%%\n", m.AnnualizedVol*100)
	fmt.Fprintf(w, "Sharpe ratio:        %.2f\n", m.SharpeRatio)
	fmt.Fprintf(w, "Max drawdown:        %.2f%%\n", m.MaxDrawdown*100)
	fmt.Fprintln(w, "---------------------------------------------------------")
	fmt.Fprintf(w, "Orders:              %d (%d filled, %d rejected)\n", m.TotalOrders, m.FilledOrders, m.RejectedOrders)
	fmt.Fprintf(w, "Closed trades:       %d won, %d lost (win rate %.1f%%)\n", m.WinningTrades, m.LosingTrades, m.WinRate*100)
	fmt.Fprintf(w, "Total commissions:   %s\n", m.TotalCommissions.StringFixed(2))
	fmt.Fprintln(w, "=========================================================")
}
