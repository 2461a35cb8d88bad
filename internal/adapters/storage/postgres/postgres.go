// Package postgres is the PostgreSQL DataStore, an alternative to the
// sqlite stores for multi-instance deployments.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"clubgrid/internal/adapters/storage/gridlayout"
	"clubgrid/internal/adapters/storage/practiceschedule"
	"clubgrid/internal/adapters/storage/rotationblock"
	"clubgrid/internal/adapters/storage/rotationevent"
)

// Open connects and pings a PostgreSQL database.
// PRE: dsn is a lib/pq connection string or URL
// POST: Returns a live *sqlx.DB
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS practice_schedule (
		id TEXT PRIMARY KEY,
		hub_id TEXT NOT NULL,
		level TEXT NOT NULL,
		schedule_group TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		is_external BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_practice_schedule_hub_day ON practice_schedule(hub_id, day)`,
	`CREATE TABLE IF NOT EXISTS rotation_event (
		id TEXT PRIMARY KEY,
		hub_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS rotation_block (
		id TEXT PRIMARY KEY,
		hub_id TEXT NOT NULL,
		day TEXT NOT NULL,
		level TEXT NOT NULL,
		schedule_group TEXT NOT NULL DEFAULT '',
		event_id TEXT NOT NULL REFERENCES rotation_event(id),
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		color TEXT NOT NULL,
		coach_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rotation_block_hub_day ON rotation_block(hub_id, day)`,
	`CREATE TABLE IF NOT EXISTS grid_layout (
		hub_id TEXT NOT NULL,
		day TEXT NOT NULL,
		column_order INTEGER[] NOT NULL DEFAULT '{}',
		combined_groups JSONB NOT NULL DEFAULT '[]',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (hub_id, day)
	)`,
}

// Migrate creates the schema if it does not exist.
// PRE: db is connected
// POST: all tables and indexes exist
func Migrate(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	slog.Info("schema_migrated", "driver", "postgres", "statements", len(schema))
	return nil
}

var (
	_ gridlayout.Store       = (*GridLayoutStore)(nil)
	_ rotationblock.Store    = (*RotationBlockStore)(nil)
	_ rotationevent.Store    = (*RotationEventStore)(nil)
	_ practiceschedule.Store = (*PracticeScheduleStore)(nil)
)
