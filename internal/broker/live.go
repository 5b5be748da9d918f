package broker

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/domain/repository"
	xhttp "TradeForge/pkg/http"
	applogger "TradeForge/pkg/logger"
)

// Live is a signed REST client for a Binance-style spot venue. The core
// treats it purely as a collaborator behind the Broker capability set;
// nothing in the pipeline depends on this transport.
type Live struct {
	apiKey    string
	apiSecret string
	baseURL   string
	quote     string
	client    *xhttp.Client
	l         *applogger.Logger
}

// NewLive creates the live venue client. testnet switches the base URL to
// the sandbox endpoints.
func NewLive(apiKey, apiSecret string, testnet bool, l *applogger.Logger) *Live {
	base := "https://api.binance.com"
	if testnet {
		base = "https://testnet.binance.vision"
	}
	return &Live{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   base,
		quote:     "USDT",
		client:    xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		l:         l,
	}
}

func (b *Live) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(b.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

func (b *Live) signedParams(extra url.Values) map[string][]string {
	v := url.Values{}
	for k, vals := range extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	v.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	v.Set("signature", b.sign(v.Encode()))
	return v
}

// Balance returns the free quote-asset balance.
func (b *Live) Balance(ctx context.Context) (float64, error) {
	var acct struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/api/v3/account",
		Headers:     map[string]string{"X-MBX-APIKEY": b.apiKey},
		QueryParams: b.signedParams(nil),
	}, &acct)
	if err != nil {
		return 0, fmt.Errorf("live balance: %w", err)
	}
	for _, bal := range acct.Balances {
		if bal.Asset == b.quote {
			free, err := strconv.ParseFloat(bal.Free, 64)
			if err != nil {
				return 0, fmt.Errorf("live balance parse: %w", err)
			}
			return free, nil
		}
	}
	return 0, nil
}

// MarketPrice returns the current ticker price.
func (b *Live) MarketPrice(ctx context.Context, symbol string) (float64, error) {
	var ticker struct {
		Price string `json:"price"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &ticker)
	if err != nil {
		return 0, fmt.Errorf("live price %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("live price parse: %w", err)
	}
	return price, nil
}

// PlaceOrder submits a market order. Exchange rejections are reported in
// the result status, transport failures as errors.
func (b *Live) PlaceOrder(ctx context.Context, intent models.OrderIntent) (models.OrderResult, error) {
	qty := decimal.NewFromFloat(intent.Quantity).Round(6)
	params := url.Values{}
	params.Set("symbol", intent.Symbol)
	params.Set("side", string(intent.Side))
	params.Set("type", string(intent.OrderType))
	params.Set("quantity", qty.String())

	var resp struct {
		OrderID int64  `json:"orderId"`
		Status  string `json:"status"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         b.baseURL + "/api/v3/order",
		Headers:     map[string]string{"X-MBX-APIKEY": b.apiKey},
		QueryParams: b.signedParams(params),
	}, &resp)
	if err != nil {
		if b.l != nil {
			b.l.Error("live order failed",
				applogger.String("symbol", intent.Symbol),
				applogger.String("side", string(intent.Side)),
				applogger.Error(err),
			)
		}
		return models.OrderResult{Status: models.OrderStatusFailed, RawResponse: err.Error()}, nil
	}
	return models.OrderResult{
		Status:      models.OrderStatusSuccess,
		OrderID:     strconv.FormatInt(resp.OrderID, 10),
		RawResponse: resp.Status,
	}, nil
}

// OpenPositions lists open orders as positions.
func (b *Live) OpenPositions(ctx context.Context) ([]models.OpenPosition, error) {
	var orders []struct {
		Symbol  string `json:"symbol"`
		OrigQty string `json:"origQty"`
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/api/v3/openOrders",
		Headers:     map[string]string{"X-MBX-APIKEY": b.apiKey},
		QueryParams: b.signedParams(nil),
	}, &orders)
	if err != nil {
		return nil, fmt.Errorf("live open positions: %w", err)
	}
	out := make([]models.OpenPosition, 0, len(orders))
	for _, o := range orders {
		qty, _ := strconv.ParseFloat(o.OrigQty, 64)
		out = append(out, models.OpenPosition{Symbol: o.Symbol, Quantity: qty})
	}
	return out, nil
}

// ClosePosition cancels all open orders for the symbol.
func (b *Live) ClosePosition(ctx context.Context, symbol string) (bool, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodDelete,
		URL:         b.baseURL + "/api/v3/openOrders",
		Headers:     map[string]string{"X-MBX-APIKEY": b.apiKey},
		QueryParams: b.signedParams(params),
	}, nil)
	if err != nil {
		return false, fmt.Errorf("live close %s: %w", symbol, err)
	}
	return true, nil
}

var _ repository.Broker = (*Live)(nil)
