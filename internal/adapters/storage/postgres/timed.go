package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"clubgrid/internal/adapters/http/perf"
	"clubgrid/internal/adapters/storage"
)

// DB is the subset of *sqlx.DB the stores use. *sqlx.DB and *TimedDB satisfy it.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

var (
	_ DB = (*sqlx.DB)(nil)
	_ DB = (*TimedDB)(nil)
)

// TimedDB wraps a *sqlx.DB with the same slow-query logging and perf
// recording as the sqlite stores.
type TimedDB struct {
	db    DB
	timer storage.QueryTimer
}

// NewTimedDB wraps db. collector may be nil; threshold <= 0 uses
// storage.DefaultSlowQuery.
func NewTimedDB(db DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	return &TimedDB{db: db, timer: storage.NewQueryTimer(collector, threshold)}
}

// GetContext wraps sqlx.DB.GetContext with timing.
func (t *TimedDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := t.db.GetContext(ctx, dest, query, args...)
	t.timer.Observe("get", query, start)
	return err
}

// SelectContext wraps sqlx.DB.SelectContext with timing.
func (t *TimedDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := t.db.SelectContext(ctx, dest, query, args...)
	t.timer.Observe("select", query, start)
	return err
}

// ExecContext wraps sqlx.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.ExecContext(ctx, query, args...)
	t.timer.Observe("exec", query, start)
	return res, err
}

// NamedExecContext wraps sqlx.DB.NamedExecContext with timing.
func (t *TimedDB) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.NamedExecContext(ctx, query, arg)
	t.timer.Observe("named_exec", query, start)
	return res, err
}
