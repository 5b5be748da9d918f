package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	"TradeForge/internal/domain/service"
	"TradeForge/internal/features"
	"TradeForge/internal/learner"
	applogger "TradeForge/pkg/logger"
)

// TrainUseCase runs the full training pipeline: collect, validate, build
// features and labels, train with walk-forward validation, then persist
// the resulting artifact.
type TrainUseCase struct {
	collector service.Collector
	learner   *learner.Learner
	store     domrepo.ModelStore
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewTrainUseCase(collector service.Collector, lr *learner.Learner, store domrepo.ModelStore, metrics domrepo.Metrics, l *applogger.Logger) *TrainUseCase {
	return &TrainUseCase{collector: collector, learner: lr, store: store, metrics: metrics, l: l}
}

// TrainResult reports the outcome of one training run.
type TrainResult struct {
	Model      string                  `json:"model"`
	Version    int                     `json:"version"`
	Symbol     string                  `json:"symbol"`
	Samples    int                     `json:"samples"`
	CVMean     float64                 `json:"cv_mean"`
	CVStd      float64                 `json:"cv_std"`
	Validation models.ValidationReport `json:"validation"`
	Provenance models.Provenance       `json:"provenance"`
	Importance map[string]float64      `json:"importance"`
}

// Train executes the pipeline for one request. A failed validation aborts
// before any model state changes.
func (uc *TrainUseCase) Train(ctx context.Context, req models.TrainRequest) (*TrainResult, error) {
	start := time.Now()

	series, err := uc.collector.Collect(ctx, req.Symbol, req.Days)
	if err != nil {
		return nil, fmt.Errorf("train: collect %s: %w", req.Symbol, err)
	}

	validation := features.Validate(series.Bars)
	if uc.metrics != nil {
		uc.metrics.RecordBarsValidated(req.Symbol, validation.Rows, validation.Score)
	}
	if !validation.Valid {
		return nil, fmt.Errorf("train: %s failed validation (score %d): %v",
			req.Symbol, validation.Score, validation.Issues)
	}

	table, err := features.Build(series.Bars)
	if err != nil {
		return nil, fmt.Errorf("train: features %s: %w", req.Symbol, err)
	}
	labeled, err := features.Labels(table, req.Lookahead, req.Threshold)
	if err != nil {
		return nil, fmt.Errorf("train: labels %s: %w", req.Symbol, err)
	}

	cv, err := uc.learner.Train(labeled.Matrix(), labeled.Labels, req.Model)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	importance := uc.learner.FeatureImportance(req.Model)
	blob, err := uc.learner.Encode(req.Model)
	if err != nil {
		return nil, fmt.Errorf("train: encode %s: %w", req.Model, err)
	}
	version, err := uc.store.Save(ctx, models.ModelArtifact{
		Name:       req.Model,
		SavedAt:    time.Now().UTC(),
		Blob:       blob,
		CVMean:     cv.Mean,
		CVStd:      cv.Std,
		Importance: importance,
	})
	if err != nil {
		return nil, fmt.Errorf("train: persist %s: %w", req.Model, err)
	}

	if uc.metrics != nil {
		uc.metrics.RecordTrainingDuration(req.Model, time.Since(start).Seconds())
		uc.metrics.RecordCVScore(req.Model, cv.Mean)
	}
	if uc.l != nil {
		uc.l.Info("training pipeline complete",
			applogger.String("model", req.Model),
			applogger.String("symbol", req.Symbol),
			applogger.Int("version", version),
			applogger.Int("samples", labeled.Rows()),
			applogger.Any("cv_mean", cv.Mean),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	return &TrainResult{
		Model:      req.Model,
		Version:    version,
		Symbol:     req.Symbol,
		Samples:    labeled.Rows(),
		CVMean:     cv.Mean,
		CVStd:      cv.Std,
		Validation: validation,
		Provenance: series.Provenance,
		Importance: namedImportance(labeled.Names, importance),
	}, nil
}

// LoadModel restores a persisted artifact into the in-process registry so
// predictions can be served without retraining.
func (uc *TrainUseCase) LoadModel(ctx context.Context, name string, version int) (models.ModelInfo, error) {
	artifact, err := uc.store.Load(ctx, name, version)
	if err != nil {
		return models.ModelInfo{}, fmt.Errorf("load model: %w", err)
	}
	if err := uc.learner.Decode(name, artifact.Blob); err != nil {
		return models.ModelInfo{}, fmt.Errorf("load model: %w", err)
	}
	return models.ModelInfo{
		Name:    artifact.Name,
		Version: artifact.Version,
		SavedAt: artifact.SavedAt,
		CVMean:  artifact.CVMean,
		CVStd:   artifact.CVStd,
	}, nil
}

// ListModels lists persisted models.
func (uc *TrainUseCase) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return uc.store.List(ctx)
}

// DeleteModel removes all persisted versions of a model.
func (uc *TrainUseCase) DeleteModel(ctx context.Context, name string) error {
	return uc.store.Delete(ctx, name)
}

func namedImportance(names []string, byIndex map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(byIndex))
	for i, v := range byIndex {
		if i >= 0 && i < len(names) {
			out[names[i]] = v
		}
	}
	return out
}
