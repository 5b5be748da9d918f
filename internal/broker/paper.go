package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/domain/repository"
	applogger "TradeForge/pkg/logger"
)

// Paper adapts the Ledger to the Broker capability set for agent flows.
// Market prices come from marks pushed by whoever owns the data feed; the
// paper venue never invents prices on its own.
type Paper struct {
	mu     sync.Mutex
	ledger *Ledger
	marks  map[string]float64
	l      *applogger.Logger
}

// NewPaper creates a simulated execution venue with the given cash.
func NewPaper(initialCash float64, l *applogger.Logger) *Paper {
	return &Paper{
		ledger: NewLedger(initialCash),
		marks:  make(map[string]float64),
		l:      l,
	}
}

// SetMark records the latest observed price for a symbol.
func (p *Paper) SetMark(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if price > 0 {
		p.marks[symbol] = price
	}
}

// Ledger exposes the underlying ledger for reporting.
func (p *Paper) Ledger() *Ledger {
	return p.ledger
}

// Balance returns available cash.
func (p *Paper) Balance(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Cash(), nil
}

// MarketPrice returns the last pushed mark for the symbol.
func (p *Paper) MarketPrice(ctx context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.marks[symbol]
	if !ok {
		return 0, fmt.Errorf("paper broker: no mark price for %s", symbol)
	}
	return price, nil
}

// PlaceOrder executes a market order against the ledger. Insufficient
// cash or holdings yields a failed result, not an error.
func (p *Paper) PlaceOrder(ctx context.Context, intent models.OrderIntent) (models.OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.marks[intent.Symbol]
	if !ok {
		return models.OrderResult{Status: models.OrderStatusFailed, RawResponse: "no mark price"}, nil
	}

	var accepted bool
	switch intent.Side {
	case models.SideBuy:
		accepted = p.ledger.PlaceOrder(time.Now().UTC(), intent.Quantity, price)
	case models.SideSell:
		accepted = p.ledger.Position() >= intent.Quantity && p.ledger.ClosePosition(time.Now().UTC(), price)
	default:
		return models.OrderResult{Status: models.OrderStatusFailed, RawResponse: "unknown side"}, nil
	}

	if !accepted {
		if p.l != nil {
			p.l.Warn("paper order rejected",
				applogger.String("symbol", intent.Symbol),
				applogger.String("side", string(intent.Side)),
			)
		}
		return models.OrderResult{Status: models.OrderStatusFailed, RawResponse: "insufficient balance or position"}, nil
	}
	return models.OrderResult{Status: models.OrderStatusSuccess, OrderID: uuid.NewString()}, nil
}

// OpenPositions lists the single tracked position when LONG.
func (p *Paper) OpenPositions(ctx context.Context) ([]models.OpenPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ledger.Position() <= 0 {
		return nil, nil
	}
	symbol := ""
	for s := range p.marks {
		symbol = s
		break
	}
	return []models.OpenPosition{{Symbol: symbol, Quantity: p.ledger.Position()}}, nil
}

// ClosePosition liquidates the tracked position at the current mark.
func (p *Paper) ClosePosition(ctx context.Context, symbol string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.marks[symbol]
	if !ok {
		return false, fmt.Errorf("paper broker: no mark price for %s", symbol)
	}
	return p.ledger.ClosePosition(time.Now().UTC(), price), nil
}

var _ repository.Broker = (*Paper)(nil)
