package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"clubgrid/internal/adapters/storage/rotationevent"
	"clubgrid/internal/domain/rotation"
)

type eventRow struct {
	ID    string `db:"id"`
	HubID string `db:"hub_id"`
	Name  string `db:"name"`
	Color string `db:"color"`
	Notes string `db:"notes"`
}

func (r eventRow) toDomain() rotation.Event {
	return rotation.Event{ID: r.ID, HubID: r.HubID, Name: r.Name, Color: r.Color, Notes: r.Notes}
}

// RotationEventStore implements rotationevent.Store on PostgreSQL.
type RotationEventStore struct {
	db DB
}

// NewRotationEventStore creates a rotation event store.
func NewRotationEventStore(db DB) *RotationEventStore {
	return &RotationEventStore{db: db}
}

// GetByID retrieves an event; the error wraps sql.ErrNoRows when absent.
func (s *RotationEventStore) GetByID(ctx context.Context, id string) (rotation.Event, error) {
	var row eventRow
	err := s.db.GetContext(ctx, &row, "SELECT id, hub_id, name, color, notes FROM rotation_event WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return rotation.Event{}, fmt.Errorf("rotation event not found: %w", err)
	}
	return row.toDomain(), err
}

// ListByHub retrieves a hub's events ordered by name.
func (s *RotationEventStore) ListByHub(ctx context.Context, hubID string) ([]rotation.Event, error) {
	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT id, hub_id, name, color, notes FROM rotation_event WHERE hub_id = $1 ORDER BY name", hubID); err != nil {
		return nil, err
	}
	events := make([]rotation.Event, len(rows))
	for i, r := range rows {
		events[i] = r.toDomain()
	}
	return events, nil
}

// Save upserts an event.
func (s *RotationEventStore) Save(ctx context.Context, e rotation.Event) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO rotation_event (id, hub_id, name, color, notes) VALUES (:id, :hub_id, :name, :color, :notes)
		ON CONFLICT (id) DO UPDATE SET hub_id = EXCLUDED.hub_id, name = EXCLUDED.name, color = EXCLUDED.color, notes = EXCLUDED.notes`,
		eventRow{ID: e.ID, HubID: e.HubID, Name: e.Name, Color: e.Color, Notes: e.Notes})
	return err
}

// Delete removes an event; ErrInUse while blocks still reference it.
func (s *RotationEventStore) Delete(ctx context.Context, id string) error {
	var uses int
	if err := s.db.GetContext(ctx, &uses, "SELECT COUNT(*) FROM rotation_block WHERE event_id = $1", id); err != nil {
		return err
	}
	if uses > 0 {
		return rotationevent.ErrInUse
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM rotation_event WHERE id = $1", id)
	return err
}
