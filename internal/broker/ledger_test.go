package broker

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"TradeForge/internal/domain/models"
)

var ts = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestPlaceOrderAcceptAndReject(t *testing.T) {
	l := NewLedger(10000)
	if !l.PlaceOrder(ts, 1, 5000) {
		t.Fatalf("affordable order rejected")
	}
	if l.Cash() != 5000 || l.Position() != 1 {
		t.Fatalf("state after buy: cash %v position %v", l.Cash(), l.Position())
	}
	if l.PlaceOrder(ts, 2, 5000) {
		t.Fatalf("unaffordable order accepted")
	}
	if l.Cash() != 5000 || l.Position() != 1 {
		t.Fatalf("rejected order mutated state: cash %v position %v", l.Cash(), l.Position())
	}
	if len(l.Fills()) != 1 {
		t.Fatalf("fill count %d, want 1", len(l.Fills()))
	}
}

func TestClosePositionFromFlatIsNoop(t *testing.T) {
	l := NewLedger(1000)
	if l.ClosePosition(ts, 100) {
		t.Fatalf("close from FLAT succeeded")
	}
	if l.Cash() != 1000 || len(l.Fills()) != 0 {
		t.Fatalf("no-op close mutated state")
	}
}

func TestCloseSellsEntirePosition(t *testing.T) {
	l := NewLedger(10000)
	l.PlaceOrder(ts, 2, 1000)
	l.PlaceOrder(ts, 1, 1000)
	if !l.ClosePosition(ts, 1500) {
		t.Fatalf("close from LONG failed")
	}
	if l.Position() != 0 {
		t.Fatalf("position after close %v, want 0", l.Position())
	}
	// 10000 - 3000 + 3*1500
	if l.Cash() != 11500 {
		t.Fatalf("cash after close %v, want 11500", l.Cash())
	}
	fills := l.Fills()
	last := fills[len(fills)-1]
	if last.Side != models.SideSell || last.Quantity != 3 {
		t.Fatalf("sell fill %+v, want full 3 units", last)
	}
}

func TestInvalidOrderArguments(t *testing.T) {
	l := NewLedger(1000)
	if l.PlaceOrder(ts, 0, 10) || l.PlaceOrder(ts, -1, 10) || l.PlaceOrder(ts, 1, 0) {
		t.Fatalf("non-positive qty/price accepted")
	}
	if l.ClosePosition(ts, 0) {
		t.Fatalf("close at non-positive price accepted")
	}
}

// For any sequence of orders and closes, cash and position stay
// non-negative and a rejected order changes nothing.
func TestLedgerInvariants_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("cash >= 0 and position >= 0 after every call", prop.ForAll(
		func(closes []bool, qtys []float64, prices []float64) bool {
			n := len(closes)
			if len(qtys) < n {
				n = len(qtys)
			}
			if len(prices) < n {
				n = len(prices)
			}
			l := NewLedger(10000)
			for i := 0; i < n; i++ {
				prevCash, prevPos, prevFills := l.Cash(), l.Position(), len(l.Fills())
				var ok bool
				if closes[i] {
					ok = l.ClosePosition(ts, prices[i])
				} else {
					ok = l.PlaceOrder(ts, qtys[i], prices[i])
				}
				if l.Cash() < 0 || l.Position() < 0 {
					return false
				}
				if !ok {
					if l.Cash() != prevCash || l.Position() != prevPos || len(l.Fills()) != prevFills {
						return false
					}
				} else if len(l.Fills()) != prevFills+1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Float64Range(-5, 50)),
		gen.SliceOf(gen.Float64Range(-10, 500)),
	))

	properties.TestingRun(t)
}
