package usecase

import (
	"context"
	"testing"

	"TradeForge/internal/domain/models"
)

func newBacktestDeps(c *stubCollector, j *fakeJournal) BacktestDeps {
	return BacktestDeps{
		Collector:   c,
		Journal:     j,
		Metrics:     &fakeMetrics{},
		InitialCash: 10000,
		ShortWindow: 5,
		LongWindow:  20,
	}
}

func TestBacktestRunEndToEnd(t *testing.T) {
	journal := &fakeJournal{}
	bars := sineBars("BTCUSDT", 120)
	uc := NewBacktestUseCase(newBacktestDeps(&stubCollector{bars: bars}, journal))

	res, err := uc.Run(context.Background(), models.BacktestRequest{
		Symbol:   "BTCUSDT",
		Days:     120,
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Report.Symbol != "BTCUSDT" {
		t.Fatalf("report symbol = %q", res.Report.Symbol)
	}
	if len(res.Equity) != len(bars) {
		t.Fatalf("equity points = %d, want %d", len(res.Equity), len(bars))
	}
	if res.Provenance != models.ProvenanceLive {
		t.Fatalf("provenance = %q, want live", res.Provenance)
	}
	// the oscillating series crosses both ways, so the simulation trades
	if len(journal.fills) == 0 {
		t.Fatal("expected fills to be journaled")
	}
}

func TestBacktestJournalFailureDoesNotAbort(t *testing.T) {
	journal := &fakeJournal{failFills: true}
	uc := NewBacktestUseCase(newBacktestDeps(&stubCollector{bars: sineBars("BTCUSDT", 120)}, journal))

	res, err := uc.Run(context.Background(), models.BacktestRequest{
		Symbol:   "BTCUSDT",
		Days:     120,
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Report.FinalEquity <= 0 {
		t.Fatalf("final equity = %v", res.Report.FinalEquity)
	}
}

func TestBacktestAbortsOnBadData(t *testing.T) {
	bars := sineBars("BTCUSDT", 120)
	bars[50].High = bars[50].Low / 2
	uc := NewBacktestUseCase(newBacktestDeps(&stubCollector{bars: bars}, &fakeJournal{}))

	if _, err := uc.Run(context.Background(), models.BacktestRequest{
		Symbol:   "BTCUSDT",
		Days:     120,
		Quantity: 1,
	}); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestBacktestCollectErrorPropagates(t *testing.T) {
	uc := NewBacktestUseCase(newBacktestDeps(&stubCollector{err: context.DeadlineExceeded}, &fakeJournal{}))

	if _, err := uc.Run(context.Background(), models.BacktestRequest{Symbol: "BTCUSDT", Days: 30, Quantity: 1}); err == nil {
		t.Fatal("expected collect error to propagate")
	}
}
