package backtest

import (
	"math"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
)

func barsFromCloses(closes []float64) models.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    "BTCUSDT",
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return models.BarSeries{Symbol: "BTCUSDT", Bars: bars, Provenance: models.ProvenanceSynthetic}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{InitialCash: 0, Quantity: 1, ShortWindow: 2, LongWindow: 3},
		{InitialCash: 1000, Quantity: 0, ShortWindow: 2, LongWindow: 3},
		{InitialCash: 1000, Quantity: 1, ShortWindow: 3, LongWindow: 3},
		{InitialCash: 1000, Quantity: 1, ShortWindow: 0, LongWindow: 3},
	}
	for i, cfg := range cases {
		if _, err := New(cfg, nil, nil, nil); err == nil {
			t.Errorf("case %d: config %+v accepted", i, cfg)
		}
	}
}

func TestRunEmptySeries(t *testing.T) {
	eng, err := New(Config{InitialCash: 1000, Quantity: 1, ShortWindow: 2, LongWindow: 3}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Run(models.BarSeries{Symbol: "X"}); err == nil {
		t.Fatal("empty series accepted")
	}
}

// A rise then fall across a 2/3 crossover: three entries on the way up,
// one full exit on the way down, then sell signals while flat are no-ops.
func TestRunCrossoverRoundTrip(t *testing.T) {
	closes := []float64{10, 10, 10, 12, 14, 16, 12, 8, 8}
	series := barsFromCloses(closes)

	eng, err := New(Config{InitialCash: 10000, Quantity: 1, ShortWindow: 2, LongWindow: 3}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Run(series)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Fills) != 4 {
		t.Fatalf("fills %d, want 3 buys + 1 sell", len(res.Fills))
	}
	for i, want := range []models.Side{models.SideBuy, models.SideBuy, models.SideBuy, models.SideSell} {
		if res.Fills[i].Side != want {
			t.Fatalf("fill %d side %s, want %s", i, res.Fills[i].Side, want)
		}
	}
	// bought 1@12, 1@14, 1@16; sold 3@8
	wantFinal := 10000.0 - 42 + 24
	if math.Abs(res.FinalEquity-wantFinal) > 1e-9 {
		t.Fatalf("final equity %v, want %v", res.FinalEquity, wantFinal)
	}
	if len(res.Equity) != len(closes) {
		t.Fatalf("equity points %d, want one per bar", len(res.Equity))
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades %d, want 1 round trip", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Quantity != 3 || math.Abs(tr.PnL-(-18)) > 1e-9 {
		t.Fatalf("trade %+v, want qty 3 pnl -18", tr)
	}
	if math.Abs(tr.EntryPx-14) > 1e-9 {
		t.Fatalf("avg entry %v, want 14", tr.EntryPx)
	}
}

// Orders the cash cannot cover are skipped without aborting the run.
func TestRunRejectionContinues(t *testing.T) {
	closes := []float64{10, 10, 10, 12, 14, 16, 12, 8, 8}
	series := barsFromCloses(closes)

	eng, err := New(Config{InitialCash: 20, Quantity: 1, ShortWindow: 2, LongWindow: 3}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	// only the 12 entry is affordable; 14 and 16 are rejected
	if len(res.Fills) != 2 {
		t.Fatalf("fills %d, want 1 buy + 1 sell", len(res.Fills))
	}
	wantFinal := 20.0 - 12 + 8
	if math.Abs(res.FinalEquity-wantFinal) > 1e-9 {
		t.Fatalf("final equity %v, want %v", res.FinalEquity, wantFinal)
	}
}

func TestRunFlatSeriesNeverTrades(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	eng, err := New(Config{InitialCash: 10000, Quantity: 1, ShortWindow: 5, LongWindow: 10}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Run(barsFromCloses(closes))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("flat series produced %d fills", len(res.Fills))
	}
	if res.FinalEquity != 10000 {
		t.Fatalf("final equity %v, want untouched cash", res.FinalEquity)
	}
}

type stubScorer struct {
	score float64
}

func (s stubScorer) Predict(X [][]float64, modelName string, threshold float64) []int {
	out := make([]int, len(X))
	for i := range out {
		if s.score > threshold {
			out[i] = 1
		}
	}
	return out
}

func (s stubScorer) ConfidenceScores(X [][]float64, modelName string) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = s.score
	}
	return out
}

// A scorer below the confidence threshold vetoes every entry the crossover
// would otherwise take.
func TestRunModelVeto(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := barsFromCloses(closes)

	cfg := Config{
		InitialCash: 100000,
		Quantity:    1,
		ShortWindow: 10,
		LongWindow:  20,
		ModelName:   "momentum",
		Confidence:  0.6,
	}
	vetoed, err := New(cfg, stubScorer{score: 0.3}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := vetoed.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fills) != 0 {
		t.Fatalf("low-confidence run produced %d fills", len(res.Fills))
	}

	allowed, err := New(cfg, stubScorer{score: 0.9}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err = allowed.Run(series)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fills) == 0 {
		t.Fatal("high-confidence run never traded on a rising series")
	}
}

func TestCloseTradesPairsAveragedEntries(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fills := []models.Fill{
		{Timestamp: ts, Side: models.SideBuy, Quantity: 2, Price: 100},
		{Timestamp: ts.Add(time.Hour), Side: models.SideBuy, Quantity: 2, Price: 110},
		{Timestamp: ts.Add(2 * time.Hour), Side: models.SideSell, Quantity: 4, Price: 120},
		{Timestamp: ts.Add(3 * time.Hour), Side: models.SideSell, Quantity: 1, Price: 90},
	}
	trades := CloseTrades(fills)
	if len(trades) != 1 {
		t.Fatalf("trades %d, want 1 (orphan sell ignored)", len(trades))
	}
	tr := trades[0]
	if math.Abs(tr.EntryPx-105) > 1e-9 {
		t.Fatalf("avg entry %v, want 105", tr.EntryPx)
	}
	if math.Abs(tr.PnL-60) > 1e-9 {
		t.Fatalf("pnl %v, want 4*120 - 420 = 60", tr.PnL)
	}
}
