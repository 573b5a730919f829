package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

const insertChunkSize = 2000

// CHBarStore reads daily bars from and writes predictions to ClickHouse.
type CHBarStore struct {
	db         *sql.DB
	barsTable  string
	predsTable string
	l          *applogger.Logger
	nowFn      func() time.Time
}

// NewCHBarStore creates a store on database.barsTable / database.predsTable.
func NewCHBarStore(ch *pkgch.Client, database, barsTable, predsTable string) *CHBarStore {
	return &CHBarStore{
		db:         ch.DB(),
		barsTable:  database + "." + barsTable,
		predsTable: database + "." + predsTable,
		l:          applogger.Nop(),
		nowFn:      time.Now,
	}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	q, args := barsQuery(s.barsTable, symbol, from, to)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse get_bars query error",
			applogger.String("table", s.barsTable),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse get_bars scan error",
				applogger.String("table", s.barsTable),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Info("clickhouse get_bars ok",
		applogger.String("table", s.barsTable),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// StoreBars inserts bars for symbol in chunks. Used to import CSV history.
func (s *CHBarStore) StoreBars(ctx context.Context, symbol string, bars []models.Bar) error {
	for lo := 0; lo < len(bars); lo += insertChunkSize {
		hi := min(lo+insertChunkSize, len(bars))
		values := make([]string, 0, hi-lo)
		args := make([]any, 0, (hi-lo)*7)
		for _, b := range bars[lo:hi] {
			if b.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume) VALUES %s",
			s.barsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store bars: %w", err)
		}
	}
	s.l.Info("clickhouse store_bars ok",
		applogger.String("table", s.barsTable),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
	)
	return nil
}

func (s *CHBarStore) StorePredictions(ctx context.Context, runID, symbol string, preds []models.Prediction) error {
	if len(preds) == 0 {
		return nil
	}
	created := s.nowFn().UTC()
	for lo := 0; lo < len(preds); lo += insertChunkSize {
		hi := min(lo+insertChunkSize, len(preds))
		values := make([]string, 0, hi-lo)
		args := make([]any, 0, (hi-lo)*6)
		for _, p := range preds[lo:hi] {
			if math.IsNaN(p.Predicted) {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, runID, symbol, p.Date, p.Actual, p.Predicted, created)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (run_id, symbol, date, actual, predicted, created_at) VALUES %s",
			s.predsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_predictions error",
				applogger.String("table", s.predsTable),
				applogger.String("run_id", runID),
				applogger.Error(err),
			)
			return fmt.Errorf("store predictions: %w", err)
		}
	}
	return nil
}

func barsQuery(table, symbol string, from, to time.Time) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT date, open, high, low, close, volume FROM %s WHERE symbol = ?", table)
	args := []any{symbol}
	if !from.IsZero() {
		b.WriteString(" AND date >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		b.WriteString(" AND date <= ?")
		args = append(args, to)
	}
	b.WriteString(" ORDER BY date ASC")
	return b.String(), args
}
