package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
)

// sineBars builds a well-formed series oscillating a few percent around a
// base price. Moves stay under the outlier threshold and both label
// classes occur.
func sineBars(symbol string, n int) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		px := 100 * (1 + 0.04*math.Sin(2*math.Pi*float64(i)/40))
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Symbol:    symbol,
			Open:      px * 0.999,
			High:      px * 1.004,
			Low:       px * 0.996,
			Close:     px,
			Volume:    1000 + float64(i%7)*50,
		}
	}
	return bars
}

// trendBars ends the series with a ramp in the given direction so the
// latest crossover signal is deterministic.
func trendBars(symbol string, n int, up bool) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		px := 100.0
		if i >= n-5 {
			step := float64(i-(n-5)+1) * 2
			if up {
				px += step
			} else {
				px -= step
			}
		}
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Symbol:    symbol,
			Open:      px,
			High:      px * 1.001,
			Low:       px * 0.999,
			Close:     px,
			Volume:    500,
		}
	}
	return bars
}

type stubCollector struct {
	bars []models.Bar
	prov models.Provenance
	err  error
}

func (s *stubCollector) Collect(_ context.Context, symbol string, _ int) (models.BarSeries, error) {
	if s.err != nil {
		return models.BarSeries{}, s.err
	}
	prov := s.prov
	if prov == "" {
		prov = models.ProvenanceLive
	}
	return models.BarSeries{Symbol: symbol, Bars: s.bars, Provenance: prov}, nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors []string
	orders int
}

func (m *fakeMetrics) RecordBarsValidated(string, int, int) {}
func (m *fakeMetrics) RecordTrainingDuration(string, float64) {}
func (m *fakeMetrics) RecordCVScore(string, float64)          {}
func (m *fakeMetrics) RecordEquity(string, float64)           {}

func (m *fakeMetrics) RecordOrder(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *fakeMetrics) errorKinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

type fakeJournal struct {
	fills       []models.Fill
	predictions int
	failFills   bool
}

func (j *fakeJournal) LogFill(_ context.Context, _ string, fill models.Fill) error {
	if j.failFills {
		return fmt.Errorf("journal down")
	}
	j.fills = append(j.fills, fill)
	return nil
}

func (j *fakeJournal) LogPrediction(_ context.Context, _ string, _ time.Time, _ float64, _ int) error {
	j.predictions++
	return nil
}

type fakePublisher struct {
	published int
	fail      bool
}

func (p *fakePublisher) PublishSignal(_ context.Context, _ string, _ time.Time, _ int, _ float64) error {
	if p.fail {
		return fmt.Errorf("broker unreachable")
	}
	p.published++
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeBars struct {
	bars []models.Bar
	err  error
}

func (b *fakeBars) GetBars(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Bar, error) {
	return b.bars, b.err
}

func (b *fakeBars) GetLatestNBars(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Bar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.bars) > n {
		return b.bars[len(b.bars)-n:], nil
	}
	return b.bars, nil
}

type fakeBroker struct {
	placed []models.OrderIntent
	closed int
	reject bool
}

func (b *fakeBroker) Balance(context.Context) (float64, error) { return 10000, nil }

func (b *fakeBroker) MarketPrice(context.Context, string) (float64, error) { return 100, nil }

func (b *fakeBroker) PlaceOrder(_ context.Context, intent models.OrderIntent) (models.OrderResult, error) {
	b.placed = append(b.placed, intent)
	if b.reject {
		return models.OrderResult{Status: models.OrderStatusFailed}, nil
	}
	return models.OrderResult{Status: models.OrderStatusSuccess, OrderID: "ord-1"}, nil
}

func (b *fakeBroker) OpenPositions(context.Context) ([]models.OpenPosition, error) { return nil, nil }

func (b *fakeBroker) ClosePosition(context.Context, string) (bool, error) {
	b.closed++
	return true, nil
}
