package repository

import (
	"context"
	"time"

	domrepo "TradeForge/internal/domain/repository"
	pkgkafka "TradeForge/pkg/kafka"
)

// KafkaPublisher pushes agent signals onto a Kafka topic, keyed by symbol
// so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates the signal publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishSignal emits one decision event.
func (p *KafkaPublisher) PublishSignal(ctx context.Context, symbol string, ts time.Time, signal int, score float64) error {
	return p.producer.Publish(ctx, p.topic, []byte(symbol), map[string]interface{}{
		"symbol": symbol,
		"ts":     ts.Unix(),
		"signal": signal,
		"score":  score,
	})
}

// Close flushes and closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)
