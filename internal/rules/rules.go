// Package rules implements the moving-average crossover signal source. It
// is pure and referentially transparent: no state survives between calls.
package rules

import (
	"fmt"
	"math"

	"TradeForge/internal/indicators"
)

// Signal values emitted by the crossover engine.
const (
	SignalSell = -1
	SignalHold = 0
	SignalBuy  = 1
)

// Engine holds the crossover window lengths.
type Engine struct {
	short int
	long  int
}

// NewEngine validates the window configuration. short must be a strictly
// shorter window than long.
func NewEngine(short, long int) (*Engine, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("crossover windows must be > 0, got short=%d long=%d", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("short window %d must be smaller than long window %d", short, long)
	}
	return &Engine{short: short, long: long}, nil
}

// Signals returns one signal per close: +1 where the short average is above
// the long, -1 where below, 0 where equal or the window is incomplete.
func (e *Engine) Signals(closes []float64) []int {
	smaShort := indicators.SMA(closes, e.short)
	smaLong := indicators.SMA(closes, e.long)
	out := make([]int, len(closes))
	for i := range closes {
		s, l := smaShort[i], smaLong[i]
		if math.IsNaN(s) || math.IsNaN(l) {
			continue
		}
		switch {
		case s > l:
			out[i] = SignalBuy
		case s < l:
			out[i] = SignalSell
		}
	}
	return out
}

// Latest is a convenience for the agent loop: the signal at the final bar.
func (e *Engine) Latest(closes []float64) int {
	sig := e.Signals(closes)
	if len(sig) == 0 {
		return SignalHold
	}
	return sig[len(sig)-1]
}
