package usecase

import (
	"context"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
)

type captureSink struct {
	bars []models.Bar
	tf   domrepo.Timeframe
}

func (s *captureSink) StoreBars(_ context.Context, bars []models.Bar, tf domrepo.Timeframe) error {
	s.bars = append(s.bars, bars...)
	s.tf = tf
	return nil
}

func TestKafkaBarsHandlerStoresBar(t *testing.T) {
	sink := &captureSink{}
	h := NewKafkaBarsHandler("bars", sink, domrepo.TF1m, &fakeMetrics{})

	msg := []byte(`{"symbol":"BTCUSDT","t":1700000000,"o":100,"h":101,"l":99,"c":100.5,"v":12.5}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sink.bars) != 1 {
		t.Fatalf("stored %d bars, want 1", len(sink.bars))
	}
	bar := sink.bars[0]
	if bar.Symbol != "BTCUSDT" || bar.Close != 100.5 {
		t.Fatalf("bar = %+v", bar)
	}
	if !bar.Timestamp.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("timestamp = %v", bar.Timestamp)
	}
	if sink.tf != domrepo.TF1m {
		t.Fatalf("timeframe = %v", sink.tf)
	}
}

func TestKafkaBarsHandlerNormalizesMillis(t *testing.T) {
	sink := &captureSink{}
	h := NewKafkaBarsHandler("bars", sink, domrepo.TF1m, &fakeMetrics{})

	msg := []byte(`{"symbol":"ETHUSDT","t":1700000000000,"o":10,"h":11,"l":9,"c":10,"v":1}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := sink.bars[0].Timestamp.Unix(); got != 1700000000 {
		t.Fatalf("unix = %d, want seconds", got)
	}
}

func TestKafkaBarsHandlerRejectsBadPayloads(t *testing.T) {
	m := &fakeMetrics{}
	h := NewKafkaBarsHandler("bars", &captureSink{}, domrepo.TF1m, m)

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := h.Handle(context.Background(), []byte(`{"t":1700000000}`)); err == nil {
		t.Fatal("expected missing symbol error")
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"BTCUSDT"}`)); err == nil {
		t.Fatal("expected missing timestamp error")
	}
	if len(m.errorKinds()) != 3 {
		t.Fatalf("recorded %d errors, want 3", len(m.errorKinds()))
	}
}
