package rotationblock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubgrid/internal/adapters/storage"
	"clubgrid/internal/domain/rotation"
)

const selectColumns = "SELECT id, hub_id, day, level, schedule_group, event_id, start_time, end_time, color, coach_id, created_at FROM rotation_block"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new rotation block store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(row scanner) (rotation.RotationBlock, error) {
	var (
		b                   rotation.RotationBlock
		start, end, created string
		coach               sql.NullString
	)
	if err := row.Scan(&b.ID, &b.HubID, &b.Day, &b.Level, &b.ScheduleGroup, &b.EventID, &start, &end, &b.Color, &coach, &created); err != nil {
		return rotation.RotationBlock{}, err
	}
	var err error
	if b.StartTime, err = rotation.ParseTimeOfDay(start); err != nil {
		return rotation.RotationBlock{}, fmt.Errorf("block %s start: %w", b.ID, err)
	}
	if b.EndTime, err = rotation.ParseTimeOfDay(end); err != nil {
		return rotation.RotationBlock{}, fmt.Errorf("block %s end: %w", b.ID, err)
	}
	if coach.Valid {
		c := coach.String
		b.CoachID = &c
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return b, nil
}

// ListByDay retrieves a hub's blocks for a day.
// PRE: hubID and day are non-empty
// POST: Returns blocks ordered by start time
func (s *SQLiteStore) ListByDay(ctx context.Context, hubID, day string) ([]rotation.RotationBlock, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE hub_id = ? AND day = ? ORDER BY start_time, created_at", hubID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []rotation.RotationBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

// GetByID retrieves a block by its ID.
// PRE: id is non-empty
// POST: Returns the block or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (rotation.RotationBlock, error) {
	b, err := scanBlock(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return rotation.RotationBlock{}, fmt.Errorf("rotation block not found: %w", err)
	}
	return b, err
}

// Create inserts a new block.
// PRE: block has been validated and has an ID
// POST: block is persisted
func (s *SQLiteStore) Create(ctx context.Context, b rotation.RotationBlock) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	var coach any
	if b.CoachID != nil {
		coach = *b.CoachID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rotation_block (id, hub_id, day, level, schedule_group, event_id, start_time, end_time, color, coach_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.HubID, b.Day, b.Level, b.ScheduleGroup, b.EventID, b.StartTime.String(), b.EndTime.String(), b.Color, coach, b.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Delete removes a block.
// PRE: id is non-empty
// POST: no block with id remains
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rotation_block WHERE id = ?", id)
	return err
}

// AssignCoach sets or clears the coach on a block.
// PRE: id is non-empty
// POST: coach_id updated; error wrapping sql.ErrNoRows if the block does not exist
func (s *SQLiteStore) AssignCoach(ctx context.Context, id string, coachID *string) error {
	var coach any
	if coachID != nil {
		coach = *coachID
	}
	res, err := s.db.ExecContext(ctx, "UPDATE rotation_block SET coach_id = ? WHERE id = ?", coach, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rotation block not found: %w", sql.ErrNoRows)
	}
	return nil
}
