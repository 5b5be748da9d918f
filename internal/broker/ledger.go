// Package broker provides the execution venues behind the Broker
// capability set: an in-memory paper ledger for simulation and a signed
// REST client for a live exchange. The variant is selected by
// configuration, never by type inspection.
package broker

import (
	"time"

	"github.com/google/uuid"

	"TradeForge/internal/domain/models"
)

// Ledger tracks cash and a single long position. Two states are implicit
// in the position size: FLAT (position == 0) and LONG (position > 0).
// Cash and position are mutated only by successful fills; a rejected order
// leaves the state bit-for-bit unchanged.
//
// No short selling, no leverage, no fees or slippage. A cost model would
// plug in here, at the ledger boundary, not in the simulator loop.
type Ledger struct {
	cash     float64
	position float64
	fills    []models.Fill
}

// NewLedger starts a ledger flat with the given cash.
func NewLedger(initialCash float64) *Ledger {
	return &Ledger{cash: initialCash}
}

// Cash returns available cash.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the held quantity.
func (l *Ledger) Position() float64 { return l.position }

// Fills returns the ordered trade log. The slice is a copy; the log
// itself is append-only.
func (l *Ledger) Fills() []models.Fill {
	return append([]models.Fill(nil), l.fills...)
}

// Equity marks the ledger to market at the given price.
func (l *Ledger) Equity(price float64) float64 {
	return l.cash + l.position*price
}

// PlaceOrder buys qty at price. The order is accepted iff it does not
// drive cash below zero. Rejection is a normal outcome, reported as false.
func (l *Ledger) PlaceOrder(ts time.Time, qty, price float64) bool {
	if qty <= 0 || price <= 0 {
		return false
	}
	cost := qty * price
	if cost > l.cash {
		return false
	}
	l.cash -= cost
	l.position += qty
	l.fills = append(l.fills, models.Fill{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Side:      models.SideBuy,
		Quantity:  qty,
		Price:     price,
	})
	return true
}

// ClosePosition sells the entire position at price. Partial closes are not
// supported by this contract. From FLAT it is a no-op returning false.
func (l *Ledger) ClosePosition(ts time.Time, price float64) bool {
	if price <= 0 || l.position <= 0 {
		return false
	}
	l.cash += l.position * price
	l.fills = append(l.fills, models.Fill{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Side:      models.SideSell,
		Quantity:  l.position,
		Price:     price,
	})
	l.position = 0
	return true
}
