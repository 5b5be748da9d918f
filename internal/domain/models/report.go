package models

import "time"

// MetricsReport is a derived, read-only snapshot computed from a completed
// trade log and equity curve. It is never persisted as mutable state.
type MetricsReport struct {
	Symbol        string    `json:"symbol"`
	GeneratedAt   time.Time `json:"generated_at"`
	TotalReturn   float64   `json:"total_return"`
	SharpeRatio   float64   `json:"sharpe_ratio"`
	SortinoRatio  float64   `json:"sortino_ratio"`
	MaxDrawdown   float64   `json:"max_drawdown"`
	DrawdownPeak  int       `json:"drawdown_peak"`
	DrawdownValley int      `json:"drawdown_valley"`
	CalmarRatio   float64   `json:"calmar_ratio"`
	WinRate       float64   `json:"win_rate"`
	ProfitFactor  float64   `json:"profit_factor"`
	RecoveryFactor float64  `json:"recovery_factor"`
	TotalTrades   int       `json:"total_trades"`
	FinalEquity   float64   `json:"final_equity"`
}

// ClosedTrade is one realized round trip (entry fill matched to exit fill)
// used by trade statistics.
type ClosedTrade struct {
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	Quantity  float64   `json:"quantity"`
	EntryPx   float64   `json:"entry_px"`
	ExitPx    float64   `json:"exit_px"`
	PnL       float64   `json:"pnl"`
}

// ValidationReport is the outcome of the OHLCV validation pass.
// Issues are human-readable; Score starts at 100 and loses 10 points
// per distinct issue class, floored at 0.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
	Score  int      `json:"score"`
	Rows   int      `json:"rows"`
}
