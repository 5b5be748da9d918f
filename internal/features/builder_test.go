package features

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
)

func syntheticBars(n int, seed int64) []models.Bar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]models.Bar, n)
	price := 100.0
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ret := rng.NormFloat64() * 0.02
		open := price
		price = price * math.Exp(ret)
		high := math.Max(open, price) * (1 + 0.003*rng.Float64())
		low := math.Min(open, price) * (1 - 0.003*rng.Float64())
		bars[i] = models.Bar{
			Timestamp: ts.AddDate(0, 0, i),
			Symbol:    "BTCUSDT",
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    1e6 * (0.5 + rng.Float64()),
		}
	}
	return bars
}

func TestBuildOutputNotLongerThanInput(t *testing.T) {
	bars := syntheticBars(120, 1)
	table, err := Build(bars)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if table.Rows() > len(bars) {
		t.Fatalf("rows %d > input %d", table.Rows(), len(bars))
	}
	for _, name := range table.Names {
		if len(table.Cols[name]) != table.Rows() {
			t.Fatalf("column %s misaligned: %d vs %d rows", name, len(table.Cols[name]), table.Rows())
		}
		for i, v := range table.Cols[name] {
			if math.IsNaN(v) {
				t.Fatalf("column %s row %d is NaN after dropna", name, i)
			}
		}
	}
}

func TestBuildInsufficientHistory(t *testing.T) {
	bars := syntheticBars(30, 2)
	if _, err := Build(bars); err == nil {
		t.Fatalf("expected error for 30 bars (longest window is 50)")
	}
}

// Features at row t must depend only on bars at or before t. Mutating
// future bars must leave earlier rows bit-for-bit unchanged.
func TestBuildNoLookahead(t *testing.T) {
	bars := syntheticBars(120, 3)
	base, err := Build(bars)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	mutated := append([]models.Bar(nil), bars...)
	for i := 110; i < len(mutated); i++ {
		mutated[i].Close *= 3
		mutated[i].High *= 3
		mutated[i].Low *= 3
		mutated[i].Volume *= 7
	}
	changed, err := Build(mutated)
	if err != nil {
		t.Fatalf("build mutated: %v", err)
	}

	// rows sharing a timestamp before the mutation point must be identical
	for i := 0; i < base.Rows(); i++ {
		if !base.Bars[i].Timestamp.Before(bars[110].Timestamp) {
			break
		}
		for _, name := range base.Names {
			if base.Cols[name][i] != changed.Cols[name][i] {
				t.Fatalf("lookahead leak: column %s row %d changed after future mutation", name, i)
			}
		}
	}
}

func TestLabelsRiseByThreshold(t *testing.T) {
	bars := syntheticBars(80, 4)
	// force a rise strictly greater than threshold over the lookahead window
	for i := 60; i < len(bars); i++ {
		bars[i].Close = bars[59].Close * (1 + 0.05*float64(i-59))
		bars[i].High = bars[i].Close * 1.01
		bars[i].Low = bars[i].Close * 0.99
		bars[i].Open = bars[i].Close
	}
	table, err := Build(bars)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	labeled, err := Labels(table, 5, 0.01)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	if labeled.Rows() != table.Rows()-5 {
		t.Fatalf("labeled rows %d, want %d", labeled.Rows(), table.Rows()-5)
	}
	// the forced ramp must be labeled positive
	idx := -1
	for i, b := range labeled.Bars {
		if b.Timestamp.Equal(bars[60].Timestamp) {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("ramp bar not in labeled table")
	}
	if labeled.Labels[idx] != 1 {
		t.Fatalf("label on rising sequence = 0, want 1")
	}
}

func TestLabelsFlatSeriesAllZero(t *testing.T) {
	bars := syntheticBars(80, 5)
	for i := range bars {
		bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close = 100, 100, 100, 100
	}
	table, err := Build(bars)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	labeled, err := Labels(table, 5, 0.01)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	for i, l := range labeled.Labels {
		if l != 0 {
			t.Fatalf("flat series label[%d] = 1, want 0", i)
		}
	}
}

func TestLabelsConfigErrors(t *testing.T) {
	bars := syntheticBars(80, 6)
	table, err := Build(bars)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := Labels(table, 5, 0); err == nil {
		t.Fatalf("expected error for zero threshold")
	}
	if _, err := Labels(table, 0, 0.01); err == nil {
		t.Fatalf("expected error for zero lookahead")
	}
	if _, err := Labels(table, table.Rows(), 0.01); err == nil {
		t.Fatalf("expected error for lookahead >= dataset length")
	}
}
