// Package indicators provides pure, trailing-only technical indicator
// functions. Every function returns a slice aligned to the input length,
// with NaN marking rows whose trailing window is incomplete. Nothing here
// ever reads a value past the row being computed.
package indicators

import "math"

// SMA computes the trailing arithmetic mean of x over n points.
func SMA(x []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= n {
			sum -= x[i-n]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// EWM computes an exponentially weighted mean with span-based decay
// alpha = 2/(span+1) and adjusted weights, so early values are a weighted
// mean over the available history rather than a biased seed. Defined from
// the first point.
func EWM(x []float64, span int) []float64 {
	if span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha
	out := make([]float64, len(x))
	var num, den float64
	for i := range x {
		num = num*decay + x[i]
		den = den*decay + 1.0
		out[i] = num / den
	}
	return out
}

// RSI computes the relative strength index over a trailing n-delta window.
// When the average loss is zero, RS is unbounded and RSI saturates at 100.
// Bounded in [0, 100] for any finite input.
func RSI(x []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	gains := make([]float64, len(x))
	losses := make([]float64, len(x))
	for i := range x {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		d := x[i] - x[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	var gainSum, lossSum float64
	for i := 1; i < len(x); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i < n {
			out[i] = math.NaN()
			continue
		}
		if i > n {
			gainSum -= gains[i-n]
			lossSum -= losses[i-n]
		}
		avgGain := gainSum / float64(n)
		avgLoss := lossSum / float64(n)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACD computes the fast-minus-slow exponential average of x and its
// signal line (an exponential average of the MACD itself).
func MACD(x []float64, fast, slow, signal int) (macd, signalLine []float64) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil
	}
	emaFast := EWM(x, fast)
	emaSlow := EWM(x, slow)
	macd = make([]float64, len(x))
	for i := range x {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine = EWM(macd, signal)
	return macd, signalLine
}

// TrueRange computes per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close, so its true range is just high-low.
func TrueRange(high, low, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		hl := high[i] - low[i]
		if i == 0 {
			out[i] = hl
			continue
		}
		hc := math.Abs(high[i] - closes[i-1])
		lc := math.Abs(low[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR computes the trailing mean of true range over n bars.
func ATR(high, low, closes []float64, n int) []float64 {
	return SMA(TrueRange(high, low, closes), n)
}

// Returns computes simple period returns; the first row is NaN.
func Returns(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i == 0 || x[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[i]/x[i-1] - 1
	}
	return out
}

// Volatility computes the trailing sample standard deviation of simple
// returns over n periods.
func Volatility(closes []float64, n int) []float64 {
	rets := Returns(closes)
	return rollingStd(rets, n)
}

// VolumeRatio divides current volume by its trailing n-bar mean.
func VolumeRatio(volume []float64, n int) []float64 {
	sma := SMA(volume, n)
	out := make([]float64, len(volume))
	for i := range volume {
		if math.IsNaN(sma[i]) || sma[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = volume[i] / sma[i]
	}
	return out
}

// rollingStd is the trailing sample (ddof=1) standard deviation over a
// window of n values, skipping the leading NaN that Returns produces.
func rollingStd(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		start := i - n + 1
		if start < 0 {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		valid := true
		for j := start; j <= i; j++ {
			if math.IsNaN(x[j]) {
				valid = false
				break
			}
			sum += x[j]
		}
		if !valid || n < 2 {
			out[i] = math.NaN()
			continue
		}
		mean := sum / float64(n)
		var ss float64
		for j := start; j <= i; j++ {
			d := x[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n-1))
	}
	return out
}
