package usecase

import (
	"context"
	"fmt"

	"TradeForge/internal/backtest"
	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	"TradeForge/internal/domain/service"
	"TradeForge/internal/features"
	"TradeForge/internal/perf"
	applogger "TradeForge/pkg/logger"
)

// BacktestUseCase collects history, validates it, replays it through the
// simulator and derives the metrics report. Fills are journaled
// best-effort.
type BacktestUseCase struct {
	collector   service.Collector
	scorer      service.Scorer
	journal     domrepo.Journal
	metrics     domrepo.Metrics
	initialCash float64
	shortWindow int
	longWindow  int
	l           *applogger.Logger
}

type BacktestDeps struct {
	Collector   service.Collector
	Scorer      service.Scorer
	Journal     domrepo.Journal
	Metrics     domrepo.Metrics
	InitialCash float64
	ShortWindow int
	LongWindow  int
	Logger      *applogger.Logger
}

func NewBacktestUseCase(deps BacktestDeps) *BacktestUseCase {
	return &BacktestUseCase{
		collector:   deps.Collector,
		scorer:      deps.Scorer,
		journal:     deps.Journal,
		metrics:     deps.Metrics,
		initialCash: deps.InitialCash,
		shortWindow: deps.ShortWindow,
		longWindow:  deps.LongWindow,
		l:           deps.Logger,
	}
}

// BacktestResult bundles the report with the raw simulation output.
type BacktestResult struct {
	Report     models.MetricsReport `json:"report"`
	Provenance models.Provenance    `json:"provenance"`
	Trades     []models.ClosedTrade `json:"trades"`
	Equity     []models.EquityPoint `json:"equity"`
}

// Run executes one backtest request end to end.
func (uc *BacktestUseCase) Run(ctx context.Context, req models.BacktestRequest) (*BacktestResult, error) {
	series, err := uc.collector.Collect(ctx, req.Symbol, req.Days)
	if err != nil {
		return nil, fmt.Errorf("backtest: collect %s: %w", req.Symbol, err)
	}

	validation := features.Validate(series.Bars)
	if uc.metrics != nil {
		uc.metrics.RecordBarsValidated(req.Symbol, validation.Rows, validation.Score)
	}
	if !validation.Valid {
		return nil, fmt.Errorf("backtest: %s failed validation (score %d): %v",
			req.Symbol, validation.Score, validation.Issues)
	}

	engine, err := backtest.New(backtest.Config{
		InitialCash: uc.initialCash,
		Quantity:    req.Quantity,
		ShortWindow: uc.shortWindow,
		LongWindow:  uc.longWindow,
		ModelName:   req.Model,
		Confidence:  req.Confidence,
	}, uc.scorer, uc.metrics, uc.l)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	result, err := engine.Run(series)
	if err != nil {
		return nil, fmt.Errorf("backtest: run %s: %w", req.Symbol, err)
	}

	// journal failures never abort a finished simulation
	if uc.journal != nil {
		for _, fill := range result.Fills {
			if err := uc.journal.LogFill(ctx, req.Symbol, fill); err != nil && uc.l != nil {
				uc.l.Warn("fill journal write failed",
					applogger.String("symbol", req.Symbol),
					applogger.Error(err),
				)
			}
		}
	}

	report := perf.Calculate(req.Symbol, result.InitialCash, result.Equity, result.Trades)
	return &BacktestResult{
		Report:     report,
		Provenance: series.Provenance,
		Trades:     result.Trades,
		Equity:     result.Equity,
	}, nil
}
