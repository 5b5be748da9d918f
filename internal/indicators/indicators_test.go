package indicators

import (
	"math"
	"testing"
)

func TestSMAWarmupAndValues(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	got := SMA(x, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("expected NaN warmup, got %v", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(got[i+2]-w) > 1e-12 {
			t.Fatalf("sma[%d] = %v, want %v", i+2, got[i+2], w)
		}
	}
}

func TestRSIBounded(t *testing.T) {
	x := []float64{100, 101, 99, 102, 98, 103, 97, 104, 96, 105, 95, 106, 94, 107, 93, 108}
	got := RSI(x, 14)
	for i, v := range got {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSISaturatesWithoutLosses(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = 100 + float64(i)
	}
	got := RSI(x, 14)
	last := got[len(got)-1]
	if last != 100 {
		t.Fatalf("rsi on monotone rise = %v, want 100", last)
	}
}

func TestEWMConvergesToConstant(t *testing.T) {
	x := make([]float64, 50)
	for i := range x {
		x[i] = 42
	}
	got := EWM(x, 12)
	for i, v := range got {
		if math.Abs(v-42) > 1e-9 {
			t.Fatalf("ewm[%d] = %v, want 42", i, v)
		}
	}
}

func TestTrueRangeUsesPrevClose(t *testing.T) {
	high := []float64{10, 12}
	low := []float64{9, 11}
	closes := []float64{9.5, 11.5}
	got := TrueRange(high, low, closes)
	if got[0] != 1 {
		t.Fatalf("tr[0] = %v, want high-low = 1", got[0])
	}
	// max(12-11, |12-9.5|, |11-9.5|) = 2.5
	if got[1] != 2.5 {
		t.Fatalf("tr[1] = %v, want 2.5", got[1])
	}
}

func TestVolatilityZeroForFlatSeries(t *testing.T) {
	x := make([]float64, 30)
	for i := range x {
		x[i] = 100
	}
	got := Volatility(x, 20)
	last := got[len(got)-1]
	if last != 0 {
		t.Fatalf("volatility of flat series = %v, want 0", last)
	}
}

func TestVolumeRatio(t *testing.T) {
	vol := make([]float64, 25)
	for i := range vol {
		vol[i] = 1000
	}
	vol[24] = 2000
	got := VolumeRatio(vol, 20)
	// trailing mean includes the current spike: 1000*19+2000 over 20
	want := 2000.0 / ((1000*19 + 2000) / 20.0)
	if math.Abs(got[24]-want) > 1e-12 {
		t.Fatalf("volume ratio = %v, want %v", got[24], want)
	}
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	x := make([]float64, 40)
	for i := range x {
		x[i] = 55
	}
	macd, sig := MACD(x, 12, 26, 9)
	if math.Abs(macd[39]) > 1e-9 || math.Abs(sig[39]) > 1e-9 {
		t.Fatalf("macd/signal on flat series = %v/%v, want 0/0", macd[39], sig[39])
	}
}
