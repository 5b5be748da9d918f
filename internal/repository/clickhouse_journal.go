package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	pkgch "TradeForge/pkg/clickhouse"
	applogger "TradeForge/pkg/logger"
)

// CHJournal appends fills and predictions to ClickHouse audit tables.
// Journal failures are reported to the caller but the contract says they
// must never abort a run, so callers log and continue.
type CHJournal struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewCHJournal wraps an established ClickHouse client.
func NewCHJournal(ch *pkgch.Client, l *applogger.Logger) *CHJournal {
	return &CHJournal{db: ch.DB(), l: l}
}

// LogFill records one executed fill.
func (j *CHJournal) LogFill(ctx context.Context, symbol string, fill models.Fill) error {
	const q = `INSERT INTO tradeforge.fills (fill_id, ts, symbol, side, quantity, price) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := j.db.ExecContext(ctx, q, fill.ID, fill.Timestamp, symbol, string(fill.Side), fill.Quantity, fill.Price)
	if err != nil {
		return fmt.Errorf("journal fill: %w", err)
	}
	if j.l != nil {
		j.l.Debug("fill journaled",
			applogger.String("symbol", symbol),
			applogger.String("side", string(fill.Side)),
		)
	}
	return nil
}

// LogPrediction records one scored decision point.
func (j *CHJournal) LogPrediction(ctx context.Context, symbol string, ts time.Time, score float64, signal int) error {
	const q = `INSERT INTO tradeforge.predictions (ts, symbol, score, signal) VALUES (?, ?, ?, ?)`
	if _, err := j.db.ExecContext(ctx, q, ts, symbol, score, signal); err != nil {
		return fmt.Errorf("journal prediction: %w", err)
	}
	return nil
}

var _ domrepo.Journal = (*CHJournal)(nil)
