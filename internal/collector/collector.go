package collector

import (
	"context"
	"fmt"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/domain/repository"
	"TradeForge/internal/domain/service"
	applogger "TradeForge/pkg/logger"
)

// minUsableBars is the shortest history worth handing to the feature
// builder; anything less triggers the synthetic fallback.
const minUsableBars = 60

// Source fetches bars from a remote venue. CoinGecko implements it; tests
// substitute stubs.
type Source interface {
	Fetch(ctx context.Context, symbol string, days int) ([]models.Bar, error)
}

// Collector tries the primary source and falls back to synthetic data.
// A fallback is a warning, not an error: downstream consumers read the
// provenance flag and score quality accordingly.
type Collector struct {
	primary  Source
	fallback *Synthetic
	sink     repository.BarSink
	metrics  repository.Metrics
	l        *applogger.Logger
}

// New builds a collector. sink and metrics may be nil.
func New(primary Source, sink repository.BarSink, metrics repository.Metrics, l *applogger.Logger) *Collector {
	return &Collector{
		primary:  primary,
		fallback: NewSynthetic(),
		sink:     sink,
		metrics:  metrics,
		l:        l,
	}
}

// Collect returns a bar series for the symbol covering days of history.
// Primary failures and thin responses both route to the synthetic path.
func (c *Collector) Collect(ctx context.Context, symbol string, days int) (models.BarSeries, error) {
	if symbol == "" {
		return models.BarSeries{}, fmt.Errorf("collector: empty symbol")
	}
	if days <= 0 {
		return models.BarSeries{}, fmt.Errorf("collector: days must be > 0, got %d", days)
	}

	series := c.fetchPrimary(ctx, symbol, days)
	if series == nil {
		bars := c.fallback.Generate(symbol, days)
		series = &models.BarSeries{Symbol: symbol, Bars: bars, Provenance: models.ProvenanceSynthetic}
		if c.l != nil {
			c.l.Warn("primary source unavailable, using synthetic bars",
				applogger.String("symbol", symbol),
				applogger.Int("days", days),
			)
		}
	}

	if c.sink != nil {
		if err := c.sink.StoreBars(ctx, series.Bars, repository.TF1d); err != nil && c.l != nil {
			c.l.Error("bar store write failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	return *series, nil
}

func (c *Collector) fetchPrimary(ctx context.Context, symbol string, days int) *models.BarSeries {
	if c.primary == nil {
		return nil
	}
	bars, err := c.primary.Fetch(ctx, symbol, days)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("collector_primary")
		}
		if c.l != nil {
			c.l.Warn("primary fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
		return nil
	}
	if len(bars) < minUsableBars && len(bars) < days {
		if c.l != nil {
			c.l.Warn("primary returned too little history",
				applogger.String("symbol", symbol),
				applogger.Int("bars", len(bars)),
			)
		}
		return nil
	}
	return &models.BarSeries{Symbol: symbol, Bars: bars, Provenance: models.ProvenanceLive}
}

var _ service.Collector = (*Collector)(nil)
