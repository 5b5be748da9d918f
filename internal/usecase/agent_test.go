package usecase

import (
	"context"
	"testing"

	"TradeForge/internal/rules"
)

func newTestAgent(t *testing.T, bars *fakeBars, broker *fakeBroker, journal *fakeJournal, pub *fakePublisher, m *fakeMetrics) *Agent {
	t.Helper()
	agent, err := NewAgent(AgentConfig{
		Symbol:      "BTCUSDT",
		Lookback:    60,
		Quantity:    1,
		ShortWindow: 5,
		LongWindow:  20,
		Confidence:  0.5,
	}, AgentDeps{
		Bars:      bars,
		Scorer:    nil,
		Broker:    broker,
		Journal:   journal,
		Publisher: pub,
		Metrics:   m,
	})
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return agent
}

func TestRunCycleBuysOnUptrend(t *testing.T) {
	broker := &fakeBroker{}
	journal := &fakeJournal{}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	agent := newTestAgent(t, &fakeBars{bars: trendBars("BTCUSDT", 60, true)}, broker, journal, pub, m)

	d, err := agent.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if d.Signal != rules.SignalBuy {
		t.Fatalf("signal = %d, want buy", d.Signal)
	}
	// scoring disabled, so score 1 clears any confidence gate
	if d.Score != 1 {
		t.Fatalf("score = %v, want 1", d.Score)
	}
	if !d.Acted || d.OrderID != "ord-1" {
		t.Fatalf("expected accepted order, got acted=%v id=%q", d.Acted, d.OrderID)
	}
	if len(broker.placed) != 1 {
		t.Fatalf("placed %d orders, want 1", len(broker.placed))
	}
	if journal.predictions != 1 {
		t.Fatalf("journaled %d predictions, want 1", journal.predictions)
	}
	if pub.published != 1 {
		t.Fatalf("published %d signals, want 1", pub.published)
	}
}

func TestRunCycleClosesOnDowntrend(t *testing.T) {
	broker := &fakeBroker{}
	agent := newTestAgent(t, &fakeBars{bars: trendBars("BTCUSDT", 60, false)}, broker, &fakeJournal{}, &fakePublisher{}, &fakeMetrics{})

	d, err := agent.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if d.Signal != rules.SignalSell {
		t.Fatalf("signal = %d, want sell", d.Signal)
	}
	if !d.Acted {
		t.Fatal("expected position close to be recorded as acted")
	}
	if broker.closed != 1 {
		t.Fatalf("closed %d positions, want 1", broker.closed)
	}
	if len(broker.placed) != 0 {
		t.Fatalf("placed %d orders on a sell, want 0", len(broker.placed))
	}
}

func TestRunCycleFailsOnShortWindow(t *testing.T) {
	agent := newTestAgent(t, &fakeBars{bars: trendBars("BTCUSDT", 10, true)}, &fakeBroker{}, &fakeJournal{}, &fakePublisher{}, &fakeMetrics{})

	if _, err := agent.RunCycle(context.Background()); err == nil {
		t.Fatal("expected error when bars < long window")
	}
}

func TestRunCyclePublishFailureDoesNotAbort(t *testing.T) {
	broker := &fakeBroker{}
	m := &fakeMetrics{}
	agent := newTestAgent(t, &fakeBars{bars: trendBars("BTCUSDT", 60, true)}, broker, &fakeJournal{}, &fakePublisher{fail: true}, m)

	d, err := agent.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !d.Acted {
		t.Fatal("publish failure must not stop the trade")
	}
	kinds := m.errorKinds()
	if len(kinds) != 1 || kinds[0] != "agent_publish" {
		t.Fatalf("recorded errors = %v, want [agent_publish]", kinds)
	}
}

func TestRunCycleRejectedOrderNotActed(t *testing.T) {
	broker := &fakeBroker{reject: true}
	m := &fakeMetrics{}
	agent := newTestAgent(t, &fakeBars{bars: trendBars("BTCUSDT", 60, true)}, broker, &fakeJournal{}, &fakePublisher{}, m)

	d, err := agent.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if d.Acted {
		t.Fatal("rejected order must not be acted")
	}
	if m.orders != 1 {
		t.Fatalf("recorded %d order attempts, want 1", m.orders)
	}
}
