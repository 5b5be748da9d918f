// Package collector acquires historical OHLCV series. The primary source
// is the CoinGecko public REST API; when it fails or returns too little
// history the collector falls back to a synthetic generator so the
// pipeline can always run. Provenance travels with every series.
package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/service/ratelimit"
	xhttp "TradeForge/pkg/http"
	applogger "TradeForge/pkg/logger"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	// public API allows ~30 req/min; stay under it
	rateKey       = "coingecko"
	rateCapacity  = 25
	rateRefillSec = 25.0 / 60.0
)

// symbol → CoinGecko asset id for the pairs the pipeline trades
var coinIDs = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
	"BNBUSDT": "binancecoin",
}

// CoinGecko fetches daily OHLCV from the CoinGecko REST API. OHLC and
// volume live on different endpoints, so one Fetch issues two requests
// and merges them by day.
type CoinGecko struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	l       *applogger.Logger
}

// NewCoinGecko creates the primary market-data source.
func NewCoinGecko(l *applogger.Logger) *CoinGecko {
	return &CoinGecko{
		baseURL: coingeckoBaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		limiter: ratelimit.New(),
		l:       l,
	}
}

func coinID(symbol string) string {
	if id, ok := coinIDs[symbol]; ok {
		return id
	}
	base := strings.TrimSuffix(strings.ToUpper(symbol), "USDT")
	return strings.ToLower(base)
}

func (c *CoinGecko) allow() error {
	if !c.limiter.Allow(rateKey, rateCapacity, rateRefillSec) {
		return fmt.Errorf("coingecko: rate limit budget exhausted")
	}
	return nil
}

// Fetch returns up to days of daily bars for the symbol, oldest first.
func (c *CoinGecko) Fetch(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	if days <= 0 {
		return nil, fmt.Errorf("coingecko: days must be > 0, got %d", days)
	}
	id := coinID(symbol)

	ohlc, err := c.fetchOHLC(ctx, id, days)
	if err != nil {
		return nil, err
	}
	volumes, err := c.fetchVolumes(ctx, id, days)
	if err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(ohlc))
	for _, row := range ohlc {
		day := row.ts.Truncate(24 * time.Hour)
		bars = append(bars, models.Bar{
			Timestamp: day,
			Symbol:    symbol,
			Open:      row.open,
			High:      row.high,
			Low:       row.low,
			Close:     row.closePx,
			Volume:    volumes[day.Unix()],
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("coingecko: empty OHLC response for %s", id)
	}
	return bars, nil
}

type ohlcRow struct {
	ts                       time.Time
	open, high, low, closePx float64
}

func (c *CoinGecko) fetchOHLC(ctx context.Context, id string, days int) ([]ohlcRow, error) {
	if err := c.allow(); err != nil {
		return nil, err
	}
	// response rows are [ms, open, high, low, close]
	var raw [][]float64
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/" + id + "/ohlc",
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(days)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("coingecko ohlc %s: %w", id, err)
	}

	rows := make([]ohlcRow, 0, len(raw))
	for _, r := range raw {
		if len(r) < 5 {
			continue
		}
		rows = append(rows, ohlcRow{
			ts:      time.UnixMilli(int64(r[0])).UTC(),
			open:    r[1],
			high:    r[2],
			low:     r[3],
			closePx: r[4],
		})
	}
	return rows, nil
}

func (c *CoinGecko) fetchVolumes(ctx context.Context, id string, days int) (map[int64]float64, error) {
	if err := c.allow(); err != nil {
		return nil, err
	}
	var chart struct {
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/" + id + "/market_chart",
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(days)},
			"interval":    {"daily"},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("coingecko volumes %s: %w", id, err)
	}

	out := make(map[int64]float64, len(chart.TotalVolumes))
	for _, r := range chart.TotalVolumes {
		if len(r) < 2 {
			continue
		}
		day := time.UnixMilli(int64(r[0])).UTC().Truncate(24 * time.Hour)
		out[day.Unix()] = r[1]
	}
	return out, nil
}
