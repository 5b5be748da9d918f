package service

import (
	"context"

	"TradeForge/internal/domain/models"
)

// Scorer produces blended probability scores for feature rows. The learner
// registry implements it; a never-trained name yields zeros, not an error.
type Scorer interface {
	Predict(X [][]float64, modelName string, confidenceThreshold float64) []int
	ConfidenceScores(X [][]float64, modelName string) []float64
}

// SignalSource produces discrete {buy, sell, hold} signals from a close
// price sequence. The rules engine implements it statelessly.
type SignalSource interface {
	Signals(closes []float64) []int
}

// Collector fetches a historical bar series, falling back to synthetic
// data when the primary source fails. The provenance flag tells downstream
// consumers which path was taken.
type Collector interface {
	Collect(ctx context.Context, symbol string, days int) (models.BarSeries, error)
}
