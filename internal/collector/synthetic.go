package collector

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"TradeForge/internal/domain/models"
)

// geometric-Brownian-motion parameters for the fallback generator,
// roughly calibrated to daily crypto behaviour
const (
	synthDrift      = 0.0005
	synthVolatility = 0.02
	synthStartPrice = 100.0
	synthBaseVolume = 1_000_000.0
)

// Synthetic produces a deterministic GBM price path per symbol. The seed
// derives from the symbol so repeated fallbacks for the same asset yield
// the same series, which keeps downstream runs reproducible.
type Synthetic struct{}

// NewSynthetic creates the fallback generator.
func NewSynthetic() *Synthetic { return &Synthetic{} }

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

// Generate returns days daily bars ending yesterday, oldest first.
func (s *Synthetic) Generate(symbol string, days int) []models.Bar {
	if days <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	bars := make([]models.Bar, 0, days)
	price := synthStartPrice
	for i := 0; i < days; i++ {
		open := price
		shock := rng.NormFloat64()
		price = open * math.Exp(synthDrift-0.5*synthVolatility*synthVolatility+synthVolatility*shock)

		hi := math.Max(open, price) * (1 + math.Abs(rng.NormFloat64())*0.005)
		lo := math.Min(open, price) * (1 - math.Abs(rng.NormFloat64())*0.005)
		vol := synthBaseVolume * math.Exp(rng.NormFloat64()*0.3)

		bars = append(bars, models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    symbol,
			Open:      open,
			High:      hi,
			Low:       lo,
			Close:     price,
			Volume:    vol,
		})
	}
	return bars
}
