package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
)

type stubSource struct {
	bars []models.Bar
	err  error
}

func (s stubSource) Fetch(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	return s.bars, s.err
}

func liveBars(symbol string, n int) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Bar, n)
	price := 50000.0
	for i := range out {
		out[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    symbol,
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price * 1.002,
			Volume:    1e6,
		}
		price *= 1.002
	}
	return out
}

func TestCollectPrimarySuccess(t *testing.T) {
	c := New(stubSource{bars: liveBars("BTCUSDT", 90)}, nil, nil, nil)
	series, err := c.Collect(context.Background(), "BTCUSDT", 90)
	if err != nil {
		t.Fatal(err)
	}
	if series.Provenance != models.ProvenanceLive {
		t.Fatalf("provenance %s, want live", series.Provenance)
	}
	if len(series.Bars) != 90 {
		t.Fatalf("bars %d, want 90", len(series.Bars))
	}
}

func TestCollectFallsBackOnError(t *testing.T) {
	c := New(stubSource{err: errors.New("boom")}, nil, nil, nil)
	series, err := c.Collect(context.Background(), "BTCUSDT", 120)
	if err != nil {
		t.Fatal(err)
	}
	if series.Provenance != models.ProvenanceSynthetic {
		t.Fatalf("provenance %s, want synthetic", series.Provenance)
	}
	if len(series.Bars) != 120 {
		t.Fatalf("bars %d, want requested days", len(series.Bars))
	}
}

func TestCollectFallsBackOnThinHistory(t *testing.T) {
	c := New(stubSource{bars: liveBars("ETHUSDT", 10)}, nil, nil, nil)
	series, err := c.Collect(context.Background(), "ETHUSDT", 365)
	if err != nil {
		t.Fatal(err)
	}
	if series.Provenance != models.ProvenanceSynthetic {
		t.Fatalf("10 bars for a 365-day request should fall back, got %s", series.Provenance)
	}
}

func TestCollectRejectsBadArgs(t *testing.T) {
	c := New(stubSource{}, nil, nil, nil)
	if _, err := c.Collect(context.Background(), "", 30); err == nil {
		t.Fatal("empty symbol accepted")
	}
	if _, err := c.Collect(context.Background(), "BTCUSDT", 0); err == nil {
		t.Fatal("zero days accepted")
	}
}

func TestSyntheticDeterministicPerSymbol(t *testing.T) {
	s := NewSynthetic()
	a := s.Generate("BTCUSDT", 50)
	b := s.Generate("BTCUSDT", 50)
	for i := range a {
		if a[i].Close != b[i].Close || a[i].Volume != b[i].Volume {
			t.Fatalf("bar %d differs across generations", i)
		}
	}
	other := s.Generate("ETHUSDT", 50)
	same := true
	for i := range a {
		if a[i].Close != other[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct symbols produced identical paths")
	}
}

func TestSyntheticBarsWellFormed(t *testing.T) {
	bars := NewSynthetic().Generate("SOLUSDT", 200)
	if len(bars) != 200 {
		t.Fatalf("bars %d", len(bars))
	}
	for i, b := range bars {
		if b.High < b.Low || b.Close > b.High || b.Close < b.Low || b.Open > b.High || b.Open < b.Low {
			t.Fatalf("bar %d violates OHLC ordering: %+v", i, b)
		}
		if b.Volume <= 0 || b.Close <= 0 {
			t.Fatalf("bar %d has non-positive close or volume", i)
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			t.Fatalf("timestamps not strictly increasing at %d", i)
		}
	}
}
