// Package features turns raw OHLCV bars into the fixed-width feature table
// and forward-looking labels consumed by the learner. All columns are
// trailing-only; rows without a complete window are dropped, never imputed.
package features

import (
	"fmt"
	"math"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/indicators"
)

// Column names in table order. The learner reports feature importance by
// position, so this order is part of the model contract.
var ColumnNames = []string{
	"sma_10", "sma_20", "sma_50",
	"rsi", "macd", "macd_signal",
	"volatility", "atr", "volume_ratio",
	"returns", "high_low_range", "close_position",
}

const (
	rsiWindow        = 14
	atrWindow        = 14
	volatilityWindow = 20
	volumeWindow     = 20
	macdFast         = 12
	macdSlow         = 26
	macdSignal       = 9
)

// Table holds aligned feature columns, one row per surviving bar.
type Table struct {
	Names []string
	Cols  map[string][]float64
	Bars  []models.Bar
	// Labels is populated by Labels; empty until then.
	Labels []int
}

// Rows returns the number of aligned rows.
func (t *Table) Rows() int { return len(t.Bars) }

// Matrix returns the feature rows as a dense matrix in column order.
func (t *Table) Matrix() [][]float64 {
	out := make([][]float64, t.Rows())
	for i := range out {
		row := make([]float64, len(t.Names))
		for j, name := range t.Names {
			row[j] = t.Cols[name][i]
		}
		out[i] = row
	}
	return out
}

// Build computes the full feature table from a bar series. Rows whose
// trailing window is incomplete are removed from the front.
func Build(bars []models.Bar) (*Table, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("build features: empty bar series")
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = b.Volume
	}

	macd, signal := indicators.MACD(closes, macdFast, macdSlow, macdSignal)
	returns := indicators.Returns(closes)

	highLow := make([]float64, len(bars))
	closePos := make([]float64, len(bars))
	for i := range bars {
		rng := highs[i] - lows[i]
		if closes[i] != 0 {
			highLow[i] = rng / closes[i]
		}
		if rng > 0 {
			closePos[i] = (closes[i] - lows[i]) / rng
		} else {
			closePos[i] = 0.5
		}
	}

	cols := map[string][]float64{
		"sma_10":         indicators.SMA(closes, 10),
		"sma_20":         indicators.SMA(closes, 20),
		"sma_50":         indicators.SMA(closes, 50),
		"rsi":            indicators.RSI(closes, rsiWindow),
		"macd":           macd,
		"macd_signal":    signal,
		"volatility":     indicators.Volatility(closes, volatilityWindow),
		"atr":            indicators.ATR(highs, lows, closes, atrWindow),
		"volume_ratio":   indicators.VolumeRatio(volumes, volumeWindow),
		"returns":        returns,
		"high_low_range": highLow,
		"close_position": closePos,
	}

	// dropna: find the first row where every column is defined.
	start := 0
	for ; start < len(bars); start++ {
		complete := true
		for _, name := range ColumnNames {
			if math.IsNaN(cols[name][start]) {
				complete = false
				break
			}
		}
		if complete {
			break
		}
	}
	if start == len(bars) {
		return nil, fmt.Errorf("build features: %d bars is not enough history for any complete row", len(bars))
	}

	trimmed := make(map[string][]float64, len(cols))
	for name, col := range cols {
		trimmed[name] = col[start:]
	}
	return &Table{
		Names: append([]string(nil), ColumnNames...),
		Cols:  trimmed,
		Bars:  bars[start:],
	}, nil
}

// Labels attaches a binary label to each row: 1 when the close `lookahead`
// bars ahead exceeds the current close by more than `threshold` as a
// fraction, 0 otherwise. The trailing rows without a future are dropped,
// so the returned table is shorter by `lookahead`.
func Labels(t *Table, lookahead int, threshold float64) (*Table, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("label threshold must be > 0, got %v", threshold)
	}
	if lookahead <= 0 {
		return nil, fmt.Errorf("label lookahead must be > 0, got %d", lookahead)
	}
	if lookahead >= t.Rows() {
		return nil, fmt.Errorf("label lookahead %d >= dataset length %d", lookahead, t.Rows())
	}

	n := t.Rows() - lookahead
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		cur := t.Bars[i].Close
		future := t.Bars[i+lookahead].Close
		if cur > 0 && future/cur-1 > threshold {
			labels[i] = 1
		}
	}

	cols := make(map[string][]float64, len(t.Cols))
	for name, col := range t.Cols {
		cols[name] = col[:n]
	}
	return &Table{
		Names:  append([]string(nil), t.Names...),
		Cols:   cols,
		Bars:   t.Bars[:n],
		Labels: labels,
	}, nil
}
