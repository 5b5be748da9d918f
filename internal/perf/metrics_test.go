package perf

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"TradeForge/internal/domain/models"
)

func curve(values ...float64) []models.EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.EquityPoint, len(values))
	for i, v := range values {
		out[i] = models.EquityPoint{Timestamp: start.AddDate(0, 0, i), Equity: v}
	}
	return out
}

func tradesFromPnL(pnls ...float64) []models.ClosedTrade {
	out := make([]models.ClosedTrade, len(pnls))
	for i, p := range pnls {
		out[i] = models.ClosedTrade{PnL: p}
	}
	return out
}

func TestMaxDrawdownKnownCurve(t *testing.T) {
	pct, peak, trough := MaxDrawdown(curve(10000, 10500, 9800, 11000))
	if math.Abs(pct-6.666666666666667) > 1e-9 {
		t.Fatalf("max drawdown %v, want ~6.67", pct)
	}
	if peak != 1 || trough != 2 {
		t.Fatalf("peak %d trough %d, want 1 and 2", peak, trough)
	}
}

func TestMaxDrawdownMonotone(t *testing.T) {
	pct, peak, trough := MaxDrawdown(curve(100, 110, 120, 130))
	if pct != 0 || peak != 0 || trough != 0 {
		t.Fatalf("monotone curve drew down: pct %v peak %d trough %d", pct, peak, trough)
	}
}

func TestWinRateAndProfitFactor(t *testing.T) {
	trades := tradesFromPnL(100, -50, 200)
	if wr := WinRate(trades); math.Abs(wr-200.0/3) > 1e-9 {
		t.Fatalf("win rate %v, want ~66.67", wr)
	}
	if pf := ProfitFactor(trades); math.Abs(pf-6.0) > 1e-9 {
		t.Fatalf("profit factor %v, want 6.0", pf)
	}
}

func TestProfitFactorSentinels(t *testing.T) {
	if pf := ProfitFactor(tradesFromPnL(100, 50)); !math.IsInf(pf, 1) {
		t.Fatalf("all-winning log: %v, want +Inf", pf)
	}
	if pf := ProfitFactor(tradesFromPnL(-100, -50)); pf != 0 {
		t.Fatalf("all-losing log: %v, want 0", pf)
	}
	if pf := ProfitFactor(nil); pf != 0 {
		t.Fatalf("empty log: %v, want 0", pf)
	}
}

func TestSharpeDegenerate(t *testing.T) {
	if s := Sharpe(nil); s != 0 {
		t.Fatalf("no returns: %v", s)
	}
	if s := Sharpe([]float64{0.01, 0.01, 0.01}); s != 0 {
		t.Fatalf("zero-variance returns: %v, want 0", s)
	}
}

func TestSharpeSign(t *testing.T) {
	up := Sharpe([]float64{0.01, 0.02, 0.005, 0.015, 0.01})
	if up <= 0 {
		t.Fatalf("consistently positive returns scored %v", up)
	}
	down := Sharpe([]float64{-0.01, -0.02, -0.005, -0.015, -0.01})
	if down >= 0 {
		t.Fatalf("consistently negative returns scored %v", down)
	}
}

func TestSortino(t *testing.T) {
	if s := Sortino([]float64{0.01, 0.02, 0.03}); s != 0 {
		t.Fatalf("no downside periods: %v, want 0", s)
	}
	// downside deviation is the std of min(excess, 0) around its own
	// mean, zeros included
	mixed := Sortino([]float64{0.02, -0.01, 0.03, -0.02, 0.04})
	if math.Abs(mixed-23.549) > 0.01 {
		t.Fatalf("mixed stream scored %v, want ~23.55", mixed)
	}
}

func TestSharpeKnownValue(t *testing.T) {
	// population std of {0.01,0.02,0.03} is sqrt(2e-4/3)
	s := Sharpe([]float64{0.01, 0.02, 0.03})
	if math.Abs(s-38.730) > 0.01 {
		t.Fatalf("sharpe %v, want ~38.73", s)
	}
}

func TestRecoveryFactor(t *testing.T) {
	if rf := RecoveryFactor(10, 6.666666666666667); math.Abs(rf-1.5) > 1e-9 {
		t.Fatalf("recovery %v, want 1.5", rf)
	}
	if rf := RecoveryFactor(10, 0); rf != 0 {
		t.Fatalf("profit with zero drawdown: %v, want 0", rf)
	}
	if rf := RecoveryFactor(0, 0); rf != 0 {
		t.Fatalf("flat run: %v, want 0", rf)
	}
}

func TestCalculateFullReport(t *testing.T) {
	equity := curve(10000, 10500, 9800, 11000)
	trades := tradesFromPnL(100, -50, 200)

	report := Calculate("BTCUSDT", 10000, equity, trades)

	if math.Abs(report.TotalReturn-10) > 1e-9 {
		t.Fatalf("total return %v, want 10", report.TotalReturn)
	}
	if math.Abs(report.MaxDrawdown-6.666666666666667) > 1e-9 {
		t.Fatalf("max drawdown %v", report.MaxDrawdown)
	}
	if report.DrawdownPeak != 1 || report.DrawdownValley != 2 {
		t.Fatalf("drawdown window %d..%d", report.DrawdownPeak, report.DrawdownValley)
	}
	if math.Abs(report.WinRate-200.0/3) > 1e-9 {
		t.Fatalf("win rate %v", report.WinRate)
	}
	if math.Abs(report.ProfitFactor-6) > 1e-9 {
		t.Fatalf("profit factor %v", report.ProfitFactor)
	}
	if report.TotalTrades != 3 || report.FinalEquity != 11000 {
		t.Fatalf("trades %d final %v", report.TotalTrades, report.FinalEquity)
	}
	// total return 10% over a 6.67% drawdown
	if math.Abs(report.CalmarRatio-1.5) > 1e-9 {
		t.Fatalf("calmar %v, want 1.5", report.CalmarRatio)
	}
	if math.Abs(report.RecoveryFactor-1.5) > 1e-9 {
		t.Fatalf("recovery %v, want 1.5", report.RecoveryFactor)
	}
}

func TestCalculateEmptyInputs(t *testing.T) {
	report := Calculate("ETHUSDT", 5000, nil, nil)
	if report.TotalReturn != 0 || report.SharpeRatio != 0 || report.MaxDrawdown != 0 {
		t.Fatalf("empty run produced non-neutral metrics: %+v", report)
	}
	if report.FinalEquity != 5000 {
		t.Fatalf("final equity %v, want initial cash", report.FinalEquity)
	}
}

// Drawdown is always within [0, 100) for positive curves, and exactly 0
// for non-decreasing curves.
func TestMaxDrawdownBounds_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("bounded for arbitrary positive curves", prop.ForAll(
		func(values []float64) bool {
			pct, peak, trough := MaxDrawdown(curve(values...))
			if pct < 0 || pct >= 100 {
				return false
			}
			return peak <= trough
		},
		gen.SliceOf(gen.Float64Range(1, 1e6)),
	))

	properties.Property("zero for sorted curves", prop.ForAll(
		func(values []float64) bool {
			sorted := append([]float64(nil), values...)
			for i := 1; i < len(sorted); i++ {
				for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
					sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
				}
			}
			pct, _, _ := MaxDrawdown(curve(sorted...))
			return pct == 0
		},
		gen.SliceOf(gen.Float64Range(1, 1e6)),
	))

	properties.TestingRun(t)
}
