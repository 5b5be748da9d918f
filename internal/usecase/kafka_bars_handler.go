package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	pkgkafka "TradeForge/pkg/kafka"
)

// KafkaBarsHandler consumes bar events from Kafka and writes them to the
// bar store. Upstream producers key by symbol, so per-symbol order holds
// within a partition.
type KafkaBarsHandler struct {
	topic   string
	sink    domrepo.BarSink
	tf      domrepo.Timeframe
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, sink domrepo.BarSink, tf domrepo.Timeframe, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, sink: sink, tf: tf, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, o, h, l, c, v}
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_unmarshal")
		}
		return err
	}
	if m.Symbol == "" || m.T <= 0 {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_invalid_bar")
		}
		return fmt.Errorf("invalid bar event: symbol=%q t=%d", m.Symbol, m.T)
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}

	bar := models.Bar{
		Timestamp: time.Unix(m.T, 0).UTC(),
		Symbol:    m.Symbol,
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	}
	if err := h.sink.StoreBars(ctx, []models.Bar{bar}, h.tf); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_store")
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
