package rules

import "testing"

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(0, 50); err == nil {
		t.Fatalf("expected error for zero short window")
	}
	if _, err := NewEngine(50, 20); err == nil {
		t.Fatalf("expected error for short >= long")
	}
	if _, err := NewEngine(20, 20); err == nil {
		t.Fatalf("expected error for equal windows")
	}
}

func TestSignalsCrossover(t *testing.T) {
	e, err := NewEngine(2, 4)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	// rising then falling prices flip the crossover
	closes := []float64{10, 10, 10, 10, 12, 14, 16, 14, 10, 6, 4}
	got := e.Signals(closes)
	if len(got) != len(closes) {
		t.Fatalf("len %d, want %d", len(got), len(closes))
	}
	for i := 0; i < 3; i++ {
		if got[i] != SignalHold {
			t.Fatalf("signal[%d] = %d during warmup, want 0", i, got[i])
		}
	}
	if got[6] != SignalBuy {
		t.Fatalf("signal[6] = %d in uptrend, want +1", got[6])
	}
	if got[10] != SignalSell {
		t.Fatalf("signal[10] = %d in downtrend, want -1", got[10])
	}
}

func TestSignalsFlatSeriesHolds(t *testing.T) {
	e, _ := NewEngine(20, 50)
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100
	}
	for i, s := range e.Signals(closes) {
		if s != SignalHold {
			t.Fatalf("signal[%d] = %d on flat series, want 0", i, s)
		}
	}
}

func TestSignalsPure(t *testing.T) {
	e, _ := NewEngine(2, 4)
	closes := []float64{10, 11, 12, 13, 14, 15}
	a := e.Signals(closes)
	b := e.Signals(closes)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("engine is not referentially transparent at %d", i)
		}
	}
}
