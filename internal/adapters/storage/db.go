package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations is the ordered schema history. Append only; never edit a shipped step.
var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS practice_schedule (
				id TEXT PRIMARY KEY,
				hub_id TEXT NOT NULL,
				level TEXT NOT NULL,
				schedule_group TEXT NOT NULL DEFAULT '',
				day TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				is_external INTEGER NOT NULL DEFAULT 0
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
				event_id TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				color TEXT NOT NULL,
				coach_id TEXT,
				created_at TEXT NOT NULL,
				FOREIGN KEY (event_id) REFERENCES rotation_event(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_rotation_block_hub_day ON rotation_block(hub_id, day)`,
			`CREATE TABLE IF NOT EXISTS grid_layout (
				hub_id TEXT NOT NULL,
				day TEXT NOT NULL,
				column_order TEXT NOT NULL DEFAULT '[]',
				combined_groups TEXT NOT NULL DEFAULT '[]',
				updated_at TEXT NOT NULL,
				PRIMARY KEY (hub_id, day)
			)`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied version, or 0 for an empty database.
// PRE: db is a valid connection
// POST: returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the recorded version, each in
// its own transaction.
// PRE: db is a valid sqlite connection; dbPath is used for logging only
// POST: schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("schema_migrated", "db", dbPath, "version", m.version, "name", m.name)
	}
	return nil
}
