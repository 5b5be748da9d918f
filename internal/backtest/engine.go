// Package backtest replays history bar-by-bar through the rules engine,
// the optional ML scorer and the ledger, producing the trade log and
// equity curve the metrics engine consumes.
//
// The central correctness invariant is no lookahead: every decision at
// bar t uses data at or before t only. Signals and scores are built from
// trailing-only constructions, so precomputing them over the full series
// does not leak future bars into past decisions.
package backtest

import (
	"fmt"

	"TradeForge/internal/broker"
	"TradeForge/internal/domain/models"
	"TradeForge/internal/domain/repository"
	"TradeForge/internal/domain/service"
	"TradeForge/internal/features"
	"TradeForge/internal/rules"
	applogger "TradeForge/pkg/logger"
)

// Config drives one simulation run.
type Config struct {
	InitialCash float64
	Quantity    float64
	ShortWindow int
	LongWindow  int
	// ModelName selects the deployed model used to score entries; empty
	// disables ML scoring and trades on the crossover alone.
	ModelName  string
	Confidence float64
}

// Result is the completed simulation output: read-only snapshots for the
// metrics engine and the reporting collaborator.
type Result struct {
	Symbol      string
	InitialCash float64
	FinalEquity float64
	Fills       []models.Fill
	Trades      []models.ClosedTrade
	Equity      []models.EquityPoint
}

// Engine owns one synchronous pass over a bar sequence. Each run owns its
// ledger exclusively; nothing is shared across simulations.
type Engine struct {
	cfg     Config
	rules   *rules.Engine
	scorer  service.Scorer
	metrics repository.Metrics
	l       *applogger.Logger
}

// New validates the configuration and builds a simulator. scorer and
// metrics may be nil.
func New(cfg Config, scorer service.Scorer, metrics repository.Metrics, l *applogger.Logger) (*Engine, error) {
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("backtest: initial cash must be > 0, got %v", cfg.InitialCash)
	}
	if cfg.Quantity <= 0 {
		return nil, fmt.Errorf("backtest: order quantity must be > 0, got %v", cfg.Quantity)
	}
	eng, err := rules.NewEngine(cfg.ShortWindow, cfg.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	return &Engine{cfg: cfg, rules: eng, scorer: scorer, metrics: metrics, l: l}, nil
}

// Run simulates the strategy over bars in timestamp order. Ledger
// rejections mean "no trade this bar" and never stop the loop; one equity
// point is appended per bar regardless of whether a trade occurred.
func (e *Engine) Run(series models.BarSeries) (*Result, error) {
	bars := series.Bars
	if len(bars) == 0 {
		return nil, fmt.Errorf("backtest: empty bar series")
	}

	closes := series.Closes()
	signals := e.rules.Signals(closes)
	scores := e.entryScores(bars)

	ledger := broker.NewLedger(e.cfg.InitialCash)
	equity := make([]models.EquityPoint, 0, len(bars))

	for i, bar := range bars {
		switch {
		case signals[i] == rules.SignalBuy && scores[i] > e.cfg.Confidence:
			accepted := ledger.PlaceOrder(bar.Timestamp, e.cfg.Quantity, bar.Close)
			if e.metrics != nil {
				e.metrics.RecordOrder(accepted)
			}
		case signals[i] == rules.SignalSell && ledger.Position() > 0:
			ledger.ClosePosition(bar.Timestamp, bar.Close)
		}

		equity = append(equity, models.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    ledger.Equity(bar.Close),
		})
	}

	final := equity[len(equity)-1].Equity
	if e.metrics != nil {
		e.metrics.RecordEquity(series.Symbol, final)
	}
	if e.l != nil {
		e.l.Info("backtest complete",
			applogger.String("symbol", series.Symbol),
			applogger.Int("bars", len(bars)),
			applogger.Int("fills", len(ledger.Fills())),
			applogger.Any("final_equity", final),
		)
	}

	fills := ledger.Fills()
	return &Result{
		Symbol:      series.Symbol,
		InitialCash: e.cfg.InitialCash,
		FinalEquity: final,
		Fills:       fills,
		Trades:      CloseTrades(fills),
		Equity:      equity,
	}, nil
}

// entryScores returns the per-bar score gating entries. Without a model
// every bar scores 1 so the crossover decides alone; with a model, bars
// lacking a complete feature window score 0 and cannot trade.
func (e *Engine) entryScores(bars []models.Bar) []float64 {
	scores := make([]float64, len(bars))
	if e.scorer == nil || e.cfg.ModelName == "" {
		for i := range scores {
			scores[i] = 1
		}
		return scores
	}

	table, err := features.Build(bars)
	if err != nil {
		if e.l != nil {
			e.l.Warn("feature build failed, ML scoring disabled for this run", applogger.Error(err))
		}
		return scores
	}
	probas := e.scorer.ConfidenceScores(table.Matrix(), e.cfg.ModelName)

	// align feature rows back to bar indices; dropped warmup rows stay 0
	offset := len(bars) - table.Rows()
	for i, p := range probas {
		scores[offset+i] = p
	}
	return scores
}

// CloseTrades pairs buy fills with the sell that flattened them, producing
// realized round trips. Entry price is the cost-weighted average of the
// accumulated buys.
func CloseTrades(fills []models.Fill) []models.ClosedTrade {
	var trades []models.ClosedTrade
	var openQty, openCost float64
	var entryTime = struct{ set bool }{}
	var firstEntry models.Fill

	for _, f := range fills {
		switch f.Side {
		case models.SideBuy:
			if !entryTime.set {
				firstEntry = f
				entryTime.set = true
			}
			openQty += f.Quantity
			openCost += f.Quantity * f.Price
		case models.SideSell:
			if openQty <= 0 {
				continue
			}
			avgEntry := openCost / openQty
			trades = append(trades, models.ClosedTrade{
				EntryTime: firstEntry.Timestamp,
				ExitTime:  f.Timestamp,
				Quantity:  f.Quantity,
				EntryPx:   avgEntry,
				ExitPx:    f.Price,
				PnL:       f.Quantity*f.Price - openCost,
			})
			openQty, openCost = 0, 0
			entryTime.set = false
		}
	}
	return trades
}
