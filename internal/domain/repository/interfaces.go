package repository

import (
	"context"
	"time"

	"TradeForge/internal/domain/models"
)

// BarSource produces raw, time-ordered OHLCV rows. Implementations include
// the ClickHouse store, the Kafka feed and the HTTP collector with its
// synthetic fallback.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Bar, error)
}

// BarSink persists raw OHLCV rows.
type BarSink interface {
	StoreBars(ctx context.Context, bars []models.Bar, tf Timeframe) error
}

// Broker is the capability set the core needs from any execution venue,
// simulated or live. Selected by configuration, never by type switching.
type Broker interface {
	Balance(ctx context.Context) (float64, error)
	MarketPrice(ctx context.Context, symbol string) (float64, error)
	PlaceOrder(ctx context.Context, intent models.OrderIntent) (models.OrderResult, error)
	OpenPositions(ctx context.Context) ([]models.OpenPosition, error)
	ClosePosition(ctx context.Context, symbol string) (bool, error)
}

// ModelStore persists trained model artifacts with per-name versioning.
// Saving increments the version counter; loading with version 0 returns
// the latest.
type ModelStore interface {
	Save(ctx context.Context, artifact models.ModelArtifact) (int, error)
	Load(ctx context.Context, name string, version int) (models.ModelArtifact, error)
	List(ctx context.Context) ([]models.ModelInfo, error)
	Delete(ctx context.Context, name string) error
}

// Journal records fills and predictions for later inspection. Failures to
// journal must never stop a simulation.
type Journal interface {
	LogFill(ctx context.Context, symbol string, fill models.Fill) error
	LogPrediction(ctx context.Context, symbol string, ts time.Time, score float64, signal int) error
}

// EventPublisher pushes agent decisions to downstream consumers.
type EventPublisher interface {
	PublishSignal(ctx context.Context, symbol string, ts time.Time, signal int, score float64) error
	Close() error
}

// Metrics abstracts pipeline instrumentation.
type Metrics interface {
	RecordBarsValidated(symbol string, rows int, score int)
	RecordTrainingDuration(model string, seconds float64)
	RecordCVScore(model string, mean float64)
	RecordOrder(accepted bool)
	RecordEquity(symbol string, equity float64)
	RecordError(kind string)
}

// MarketStream provides live price ticks for the agent loop.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}
