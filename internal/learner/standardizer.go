package learner

import (
	"fmt"
	"math"
)

// Standardizer is a per-feature zero-mean/unit-variance transform fit on
// training data and reapplied unchanged at inference time. Fields are
// exported for gob encoding.
type Standardizer struct {
	Mean []float64
	Std  []float64
}

// FitStandardizer computes column means and standard deviations. Constant
// columns get std 1 so standardizing them is a no-op instead of a division
// by zero.
func FitStandardizer(X [][]float64) (*Standardizer, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, fmt.Errorf("fit standardizer: empty matrix")
	}
	cols := len(X[0])
	s := &Standardizer{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	n := float64(len(X))
	for _, row := range X {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Transform returns a standardized copy; the input is left untouched.
func (s *Standardizer) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out
}
