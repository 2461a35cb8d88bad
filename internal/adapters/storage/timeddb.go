package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"clubgrid/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all sqlite stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold above which a query is logged at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

// QueryTimer logs statement durations and feeds a perf collector. It is shared
// by the sqlite TimedDB and the postgres stores.
type QueryTimer struct {
	collector *perf.Collector
	threshold time.Duration
}

// NewQueryTimer creates a timer.
// PRE: threshold <= 0 uses DefaultSlowQuery; collector may be nil
func NewQueryTimer(collector *perf.Collector, threshold time.Duration) QueryTimer {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return QueryTimer{collector: collector, threshold: threshold}
}

// TimedDB wraps a *sql.DB, logging slow statements and feeding a perf collector.
type TimedDB struct {
	db    *sql.DB
	timer QueryTimer
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid connection; threshold <= 0 uses DefaultSlowQuery
// POST: Returns a TimedDB that records every statement to collector (may be nil)
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	return &TimedDB{db: db, timer: NewQueryTimer(collector, threshold)}
}

// RawDB returns the underlying *sql.DB (migrations need it).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// statementLabel reduces a query to "VERB table" so the collector groups by
// statement shape instead of by literal SQL.
func statementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "empty"
	}
	verb := strings.ToUpper(fields[0])
	for i, f := range fields {
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(fields) {
				return verb + " " + strings.Trim(fields[i+1], "(;")
			}
		}
	}
	return verb
}

// Observe records one statement that began at start.
func (t QueryTimer) Observe(op, query string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	label := statementLabel(query)

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "op", op, "stmt", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "op", op, "stmt", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.timer.Observe("exec", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.timer.Observe("query", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.timer.Observe("query_row", query, start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.timer.Observe("begin", "BEGIN", start)
	return tx, err
}

// Close closes the underlying connection pool.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}
