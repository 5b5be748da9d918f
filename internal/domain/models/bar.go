package models

import "time"

// Bar represents one OHLCV record for a fixed time interval.
// Bars are immutable once produced and ordered strictly by timestamp.
type Bar struct {
	Timestamp time.Time
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Provenance marks where a bar series came from. Downstream quality
// scoring depends on knowing which path produced the data.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceSynthetic Provenance = "synthetic"
)

// BarSeries is a time-ordered sequence of bars plus its provenance.
type BarSeries struct {
	Symbol     string
	Bars       []Bar
	Provenance Provenance
}

// Closes extracts the close-price sequence in bar order.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}
