package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	"TradeForge/internal/domain/service"
	"TradeForge/internal/features"
	"TradeForge/internal/rules"
	applogger "TradeForge/pkg/logger"
)

// AgentConfig drives the live decision cycle.
type AgentConfig struct {
	Symbol      string
	Lookback    int
	Quantity    float64
	ShortWindow int
	LongWindow  int
	Model       string
	Confidence  float64
	Timeframe   domrepo.Timeframe
}

// Agent runs the periodic decide-and-act cycle against a broker. One
// cycle reads recent bars, derives the crossover signal and the model
// score, journals and publishes the decision, then acts through the
// broker when both agree.
type Agent struct {
	cfg       AgentConfig
	bars      domrepo.BarSource
	scorer    service.Scorer
	broker    domrepo.Broker
	journal   domrepo.Journal
	publisher domrepo.EventPublisher
	rules     *rules.Engine
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

type AgentDeps struct {
	Bars      domrepo.BarSource
	Scorer    service.Scorer
	Broker    domrepo.Broker
	Journal   domrepo.Journal
	Publisher domrepo.EventPublisher
	Metrics   domrepo.Metrics
	Logger    *applogger.Logger
}

// NewAgent validates the config and assembles the cycle runner.
func NewAgent(cfg AgentConfig, deps AgentDeps) (*Agent, error) {
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("agent: symbol required")
	}
	if cfg.Quantity <= 0 {
		return nil, fmt.Errorf("agent: quantity must be > 0, got %v", cfg.Quantity)
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 120
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = domrepo.DefaultTimeframe()
	}
	eng, err := rules.NewEngine(cfg.ShortWindow, cfg.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	return &Agent{
		cfg:       cfg,
		bars:      deps.Bars,
		scorer:    deps.Scorer,
		broker:    deps.Broker,
		journal:   deps.Journal,
		publisher: deps.Publisher,
		rules:     eng,
		metrics:   deps.Metrics,
		l:         deps.Logger,
	}, nil
}

// Decision is the outcome of one agent cycle.
type Decision struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Signal    int       `json:"signal"`
	Score     float64   `json:"score"`
	Acted     bool      `json:"acted"`
	OrderID   string    `json:"order_id,omitempty"`
}

// RunCycle executes one decision cycle. Broker rejections and journal or
// publish failures are recorded but do not fail the cycle; only a missing
// data window does.
func (a *Agent) RunCycle(ctx context.Context) (*Decision, error) {
	bars, err := a.bars.GetLatestNBars(ctx, a.cfg.Symbol, a.cfg.Lookback, a.cfg.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("agent: latest bars: %w", err)
	}
	if len(bars) < a.cfg.LongWindow {
		return nil, fmt.Errorf("agent: %d bars < long window %d", len(bars), a.cfg.LongWindow)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	signal := a.rules.Latest(closes)
	score := a.latestScore(bars)
	now := bars[len(bars)-1].Timestamp

	decision := &Decision{Symbol: a.cfg.Symbol, Timestamp: now, Signal: signal, Score: score}

	if a.journal != nil {
		if err := a.journal.LogPrediction(ctx, a.cfg.Symbol, now, score, signal); err != nil && a.l != nil {
			a.l.Warn("prediction journal failed", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.PublishSignal(ctx, a.cfg.Symbol, now, signal, score); err != nil {
			if a.metrics != nil {
				a.metrics.RecordError("agent_publish")
			}
			if a.l != nil {
				a.l.Warn("signal publish failed", applogger.Error(err))
			}
		}
	}

	a.act(ctx, decision)
	return decision, nil
}

func (a *Agent) act(ctx context.Context, d *Decision) {
	switch {
	case d.Signal == rules.SignalBuy && d.Score > a.cfg.Confidence:
		result, err := a.broker.PlaceOrder(ctx, models.OrderIntent{
			Symbol:    a.cfg.Symbol,
			Quantity:  a.cfg.Quantity,
			Side:      models.SideBuy,
			OrderType: models.OrderTypeMarket,
		})
		if err != nil {
			if a.metrics != nil {
				a.metrics.RecordError("agent_order")
			}
			if a.l != nil {
				a.l.Error("agent order failed", applogger.String("symbol", a.cfg.Symbol), applogger.Error(err))
			}
			return
		}
		accepted := result.Status == models.OrderStatusSuccess
		if a.metrics != nil {
			a.metrics.RecordOrder(accepted)
		}
		d.Acted = accepted
		d.OrderID = result.OrderID
	case d.Signal == rules.SignalSell:
		closed, err := a.broker.ClosePosition(ctx, a.cfg.Symbol)
		if err != nil {
			if a.l != nil {
				a.l.Error("agent close failed", applogger.String("symbol", a.cfg.Symbol), applogger.Error(err))
			}
			return
		}
		d.Acted = closed
	}
}

// latestScore returns the model probability for the newest bar, or 1 when
// scoring is disabled so the crossover decides alone.
func (a *Agent) latestScore(bars []models.Bar) float64 {
	if a.scorer == nil || a.cfg.Model == "" {
		return 1
	}
	table, err := features.Build(bars)
	if err != nil || table.Rows() == 0 {
		return 0
	}
	scores := a.scorer.ConfidenceScores(table.Matrix(), a.cfg.Model)
	return scores[len(scores)-1]
}

// Run loops RunCycle on the interval until ctx is cancelled.
func (a *Agent) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			decision, err := a.RunCycle(ctx)
			if err != nil {
				if a.metrics != nil {
					a.metrics.RecordError("agent_cycle")
				}
				if a.l != nil {
					a.l.Warn("agent cycle failed", applogger.Error(err))
				}
				continue
			}
			if a.l != nil {
				a.l.Info("agent cycle",
					applogger.String("symbol", decision.Symbol),
					applogger.Int("signal", decision.Signal),
					applogger.Any("score", decision.Score),
					applogger.Any("acted", decision.Acted),
				)
			}
		}
	}
}
