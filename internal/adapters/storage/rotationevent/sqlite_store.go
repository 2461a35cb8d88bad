package rotationevent

import (
	"context"
	"database/sql"
	"fmt"

	"clubgrid/internal/adapters/storage"
	"clubgrid/internal/domain/rotation"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new rotation event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an event by its ID.
// PRE: id is non-empty
// POST: Returns the event or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (rotation.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, hub_id, name, color, notes FROM rotation_event WHERE id = ?", id)
	var e rotation.Event
	err := row.Scan(&e.ID, &e.HubID, &e.Name, &e.Color, &e.Notes)
	if err == sql.ErrNoRows {
		return rotation.Event{}, fmt.Errorf("rotation event not found: %w", err)
	}
	return e, err
}

// ListByHub retrieves a hub's events ordered by name.
func (s *SQLiteStore) ListByHub(ctx context.Context, hubID string) ([]rotation.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, hub_id, name, color, notes FROM rotation_event WHERE hub_id = ? ORDER BY name", hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []rotation.Event
	for rows.Next() {
		var e rotation.Event
		if err := rows.Scan(&e.ID, &e.HubID, &e.Name, &e.Color, &e.Notes); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// Save persists an event (insert or update).
// PRE: event has been validated
func (s *SQLiteStore) Save(ctx context.Context, e rotation.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rotation_event (id, hub_id, name, color, notes) VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET hub_id=excluded.hub_id, name=excluded.name, color=excluded.color, notes=excluded.notes",
		e.ID, e.HubID, e.Name, e.Color, e.Notes,
	)
	return err
}

// Delete removes an event.
// PRE: id is non-empty
// POST: Returns ErrInUse while blocks still reference the event
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	var uses int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rotation_block WHERE event_id = ?", id).Scan(&uses); err != nil {
		return err
	}
	if uses > 0 {
		return ErrInUse
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM rotation_event WHERE id = ?", id)
	return err
}
