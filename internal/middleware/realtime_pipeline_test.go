package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
)

type recordProc struct {
	mu   sync.Mutex
	got  []*models.Bar
	fail bool
}

func (r *recordProc) Process(_ context.Context, b *models.Bar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("downstream down")
	}
	r.got = append(r.got, b)
	return nil
}

func (r *recordProc) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type countMetrics struct {
	mu    sync.Mutex
	kinds map[string]int
}

func (m *countMetrics) RecordBarsValidated(string, int, int) {}
func (m *countMetrics) RecordTrainingDuration(string, float64) {}
func (m *countMetrics) RecordCVScore(string, float64)          {}
func (m *countMetrics) RecordOrder(bool)                       {}
func (m *countMetrics) RecordEquity(string, float64)           {}

func (m *countMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kinds == nil {
		m.kinds = map[string]int{}
	}
	m.kinds[kind]++
}

func (m *countMetrics) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kinds[kind]
}

func validTestBar(symbol string) *models.Bar {
	return &models.Bar{
		Timestamp: time.Now().UTC(),
		Symbol:    symbol,
		Open:      100, High: 101, Low: 99, Close: 100.5,
		Volume: 10,
	}
}

func TestPipelineForwardsValidBar(t *testing.T) {
	proc := &recordProc{}
	p := NewRealtimePipeline(proc, &countMetrics{})

	if err := p.Process(context.Background(), validTestBar("BTCUSDT")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("forwarded %d bars, want 1", proc.count())
	}
}

func TestPipelineRejectsMalformedBars(t *testing.T) {
	proc := &recordProc{}
	m := &countMetrics{}
	p := NewRealtimePipeline(proc, m)

	cases := []*models.Bar{
		nil,
		{Timestamp: time.Now(), Open: 1, High: 2, Low: 1, Close: 1, Volume: 1}, // no symbol
		{Symbol: "X", Open: 1, High: 2, Low: 1, Close: 1, Volume: 1},           // no timestamp
		{Symbol: "X", Timestamp: time.Now(), Open: -1, High: 2, Low: 1, Close: 1, Volume: 1},
		{Symbol: "X", Timestamp: time.Now(), Open: 1, High: 1, Low: 2, Close: 1.5, Volume: 1}, // high < low
	}
	for i, b := range cases {
		if err := p.Process(context.Background(), b); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("forwarded %d malformed bars", proc.count())
	}
	if m.count("pipeline_validate") != len(cases) {
		t.Fatalf("validate errors = %d, want %d", m.count("pipeline_validate"), len(cases))
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &recordProc{}
	m := &countMetrics{}
	p := NewRealtimePipeline(proc, m, WithMaxRPS(1))

	// second bar for the same symbol inside the window is dropped
	if err := p.Process(context.Background(), validTestBar("BTCUSDT")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), validTestBar("BTCUSDT")); err != nil {
		t.Fatalf("throttled bar must not error: %v", err)
	}
	// a different symbol has its own budget
	if err := p.Process(context.Background(), validTestBar("ETHUSDT")); err != nil {
		t.Fatalf("other symbol: %v", err)
	}

	if proc.count() != 2 {
		t.Fatalf("forwarded %d bars, want 2", proc.count())
	}
	if m.count("pipeline_throttle") != 1 {
		t.Fatalf("throttle drops = %d, want 1", m.count("pipeline_throttle"))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordProc{fail: true}
	m := &countMetrics{}
	p := NewRealtimePipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestBar("BTCUSDT")); err == nil {
		t.Fatal("expected downstream error")
	}
	if m.count("pipeline_process") != 1 {
		t.Fatalf("process errors = %d, want 1", m.count("pipeline_process"))
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("buffered %d bars, want 1", len(p.bufCh))
	}

	// recovery drains the buffer
	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for proc.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("buffered bar never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
