package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"TradeForge/internal/domain/models"
	icache "TradeForge/internal/service/cache"
	"TradeForge/internal/service/metrics"
	"TradeForge/internal/service/ratelimit"
	"TradeForge/internal/usecase"
	applogger "TradeForge/pkg/logger"
)

// ReportsHandler serves the read-heavy reporting surface on net/http.
// Responses are cached briefly: a backtest over the same window is
// deterministic, so short TTLs only bound recomputation.
type ReportsHandler struct {
	backtest *usecase.BacktestUseCase
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewReportsHandler(backtest *usecase.BacktestUseCase) *ReportsHandler {
	metrics.Register()
	return &ReportsHandler{backtest: backtest, rl: ratelimit.New()}
}

func (h *ReportsHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *ReportsHandler) SetLogger(l *applogger.Logger) { h.l = l }

// Report runs (or serves from cache) a backtest and returns the metrics
// report only.
func (h *ReportsHandler) Report() http.HandlerFunc {
	return h.serve("report", func(res *usecase.BacktestResult) interface{} {
		return res.Report
	})
}

// Equity returns the backtest equity curve.
func (h *ReportsHandler) Equity() http.HandlerFunc {
	return h.serve("equity", func(res *usecase.BacktestResult) interface{} {
		return res.Equity
	})
}

// Trades returns the realized round trips.
func (h *ReportsHandler) Trades() http.HandlerFunc {
	return h.serve("trades", func(res *usecase.BacktestResult) interface{} {
		return res.Trades
	})
}

func (h *ReportsHandler) serve(endpoint string, project func(*usecase.BacktestResult) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() { metrics.ReportLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("reports." + endpoint + " missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		req := models.BacktestRequest{
			Symbol:     symbol,
			Days:       parseInt(r.URL.Query().Get("days"), 90),
			Quantity:   parseFloat(r.URL.Query().Get("quantity"), 1),
			Confidence: parseFloat(r.URL.Query().Get("confidence"), 0.5),
			Model:      r.URL.Query().Get("model"),
		}

		if !h.rl.Allow(r.RemoteAddr+":"+endpoint, 5, 2) {
			if h.l != nil {
				h.l.Warn("reports."+endpoint+" rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}

		cacheKey := endpoint + ":" + symbol + ":" + strconv.Itoa(req.Days) + ":" + req.Model
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("reports."+endpoint+" cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("reports."+endpoint+" write_error", applogger.Error(err))
				}
				return
			}
		}

		res, err := h.backtest.Run(r.Context(), req)
		if err != nil {
			metrics.ReportErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("reports."+endpoint+" error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(project(res))
		if err != nil {
			if h.l != nil {
				h.l.Error("reports."+endpoint+" marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("reports."+endpoint+" cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("reports."+endpoint+" write_error", applogger.Error(err))
		}
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
