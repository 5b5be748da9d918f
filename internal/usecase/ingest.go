package usecase

import (
	"context"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	pkgkafka "TradeForge/pkg/kafka"
)

// BarIngestor publishes closed bars from the live stream onto the bars
// topic. The Kafka consumer persists them, so the write path stays async
// and the stream reader never blocks on ClickHouse.
type BarIngestor struct {
	producer *pkgkafka.Producer
	topic    string
	metrics  domrepo.Metrics
}

func NewBarIngestor(producer *pkgkafka.Producer, topic string, metrics domrepo.Metrics) *BarIngestor {
	return &BarIngestor{producer: producer, topic: topic, metrics: metrics}
}

type barEvent struct {
	Symbol string  `json:"symbol"`
	T      int64   `json:"t"`
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      float64 `json:"v"`
}

// Process publishes one bar keyed by symbol so per-symbol order is kept
// within a partition.
func (b *BarIngestor) Process(ctx context.Context, bar *models.Bar) error {
	ev := barEvent{
		Symbol: bar.Symbol,
		T:      bar.Timestamp.Unix(),
		O:      bar.Open,
		H:      bar.High,
		L:      bar.Low,
		C:      bar.Close,
		V:      bar.Volume,
	}
	if err := b.producer.Publish(ctx, b.topic, []byte(bar.Symbol), ev); err != nil {
		if b.metrics != nil {
			b.metrics.RecordError("ingest_publish")
		}
		return err
	}
	return nil
}
