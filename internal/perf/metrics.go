// Package perf computes risk and trade statistics from a completed equity
// curve and trade log. Every function is pure; degenerate inputs produce
// sentinel values rather than errors so reports always render.
//
// Sentinel conventions: ratios that divide by a zero spread or zero
// drawdown report 0; profit factor alone reports +Inf when there are
// gains and no losses, since "no losing side" is a meaningfully
// different outcome from "no edge".
package perf

import (
	"math"
	"time"

	"TradeForge/internal/domain/models"
)

const (
	// trading periods per year for annualization of daily bars
	periodsPerYear = 252
	// annual risk-free rate used for excess-return ratios
	riskFreeRate = 0.02
)

// Returns converts an equity curve into simple period returns. A curve
// with fewer than two points has no returns.
func Returns(equity []models.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i].Equity/prev-1)
	}
	return out
}

// Sharpe is the annualized excess-return ratio. Zero-variance return
// streams score 0.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFreeRate/periodsPerYear
	}
	m := mean(excess)
	s := stddev(excess, m)
	if s == 0 {
		return 0
	}
	return m / s * math.Sqrt(periodsPerYear)
}

// Sortino penalizes only downside deviation: the denominator is the
// standard deviation of the excess returns clipped to non-positive
// values, zeros included. With no downside dispersion the ratio is
// undefined and reports 0.
func Sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	target := riskFreeRate / periodsPerYear
	excess := make([]float64, len(returns))
	clipped := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - target
		clipped[i] = math.Min(excess[i], 0)
	}
	downside := stddev(clipped, mean(clipped))
	if downside == 0 {
		return 0
	}
	return mean(excess) / downside * math.Sqrt(periodsPerYear)
}

// MaxDrawdown returns the deepest peak-to-trough decline as a percentage
// of the peak, plus the indices of that peak and trough. A monotonically
// non-decreasing curve has zero drawdown with both indices at 0.
func MaxDrawdown(equity []models.EquityPoint) (pct float64, peak, trough int) {
	if len(equity) == 0 {
		return 0, 0, 0
	}
	peakIdx, runningPeak := 0, equity[0].Equity
	for i, p := range equity {
		if p.Equity > runningPeak {
			runningPeak = p.Equity
			peakIdx = i
		}
		if runningPeak <= 0 {
			continue
		}
		dd := (runningPeak - p.Equity) / runningPeak * 100
		if dd > pct {
			pct = dd
			peak = peakIdx
			trough = i
		}
	}
	return pct, peak, trough
}

// WinRate is the percentage of closed trades with positive PnL.
func WinRate(trades []models.ClosedTrade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var wins int
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}

// ProfitFactor is gross profit over gross loss. All-winning logs report
// +Inf; logs with no winning trades report 0.
func ProfitFactor(trades []models.ClosedTrade) float64 {
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else {
			grossLoss += -t.PnL
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// RecoveryFactor is total return over the max drawdown magnitude, both
// as percentages. A run with zero drawdown reports 0.
func RecoveryFactor(totalReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return totalReturn / maxDrawdown
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// population standard deviation (ddof=0)
func stddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// Calculate assembles the full report from a finished run. Empty inputs
// yield an all-neutral report, never a panic.
func Calculate(symbol string, initialCash float64, equity []models.EquityPoint, trades []models.ClosedTrade) models.MetricsReport {
	report := models.MetricsReport{
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
		TotalTrades: len(trades),
		FinalEquity: initialCash,
	}
	if len(equity) == 0 {
		return report
	}

	final := equity[len(equity)-1].Equity
	report.FinalEquity = final
	if initialCash > 0 {
		report.TotalReturn = (final/initialCash - 1) * 100
	}

	returns := Returns(equity)
	report.SharpeRatio = Sharpe(returns)
	report.SortinoRatio = Sortino(returns)

	ddPct, peak, trough := MaxDrawdown(equity)
	report.MaxDrawdown = ddPct
	report.DrawdownPeak = peak
	report.DrawdownValley = trough

	if ddPct > 0 {
		report.CalmarRatio = report.TotalReturn / ddPct
	}

	report.WinRate = WinRate(trades)
	report.ProfitFactor = ProfitFactor(trades)
	report.RecoveryFactor = RecoveryFactor(report.TotalReturn, ddPct)

	return report
}
