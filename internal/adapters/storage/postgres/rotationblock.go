package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubgrid/internal/domain/rotation"
)

type blockRow struct {
	ID            string         `db:"id"`
	HubID         string         `db:"hub_id"`
	Day           string         `db:"day"`
	Level         string         `db:"level"`
	ScheduleGroup string         `db:"schedule_group"`
	EventID       string         `db:"event_id"`
	StartTime     string         `db:"start_time"`
	EndTime       string         `db:"end_time"`
	Color         string         `db:"color"`
	CoachID       sql.NullString `db:"coach_id"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r blockRow) toDomain() (rotation.RotationBlock, error) {
	b := rotation.RotationBlock{
		ID: r.ID, HubID: r.HubID, Day: r.Day, Level: r.Level, ScheduleGroup: r.ScheduleGroup,
		EventID: r.EventID, Color: r.Color, CreatedAt: r.CreatedAt,
	}
	var err error
	if b.StartTime, err = rotation.ParseTimeOfDay(r.StartTime); err != nil {
		return rotation.RotationBlock{}, fmt.Errorf("block %s start: %w", r.ID, err)
	}
	if b.EndTime, err = rotation.ParseTimeOfDay(r.EndTime); err != nil {
		return rotation.RotationBlock{}, fmt.Errorf("block %s end: %w", r.ID, err)
	}
	if r.CoachID.Valid {
		c := r.CoachID.String
		b.CoachID = &c
	}
	return b, nil
}

func blockRowFrom(b rotation.RotationBlock) blockRow {
	row := blockRow{
		ID: b.ID, HubID: b.HubID, Day: b.Day, Level: b.Level, ScheduleGroup: b.ScheduleGroup,
		EventID: b.EventID, StartTime: b.StartTime.String(), EndTime: b.EndTime.String(),
		Color: b.Color, CreatedAt: b.CreatedAt,
	}
	if b.CoachID != nil {
		row.CoachID = sql.NullString{String: *b.CoachID, Valid: true}
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	return row
}

const blockColumns = "id, hub_id, day, level, schedule_group, event_id, start_time, end_time, color, coach_id, created_at"

// RotationBlockStore implements rotationblock.Store on PostgreSQL.
type RotationBlockStore struct {
	db DB
}

// NewRotationBlockStore creates a rotation block store.
func NewRotationBlockStore(db DB) *RotationBlockStore {
	return &RotationBlockStore{db: db}
}

// ListByDay retrieves a hub's blocks for a day ordered by start time.
func (s *RotationBlockStore) ListByDay(ctx context.Context, hubID, day string) ([]rotation.RotationBlock, error) {
	var rows []blockRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT "+blockColumns+" FROM rotation_block WHERE hub_id = $1 AND day = $2 ORDER BY start_time, created_at",
		hubID, day); err != nil {
		return nil, err
	}
	blocks := make([]rotation.RotationBlock, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// GetByID retrieves a block; the error wraps sql.ErrNoRows when absent.
func (s *RotationBlockStore) GetByID(ctx context.Context, id string) (rotation.RotationBlock, error) {
	var row blockRow
	err := s.db.GetContext(ctx, &row, "SELECT "+blockColumns+" FROM rotation_block WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return rotation.RotationBlock{}, fmt.Errorf("rotation block not found: %w", err)
	}
	if err != nil {
		return rotation.RotationBlock{}, err
	}
	return row.toDomain()
}

// Create inserts a new block.
func (s *RotationBlockStore) Create(ctx context.Context, b rotation.RotationBlock) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO rotation_block (`+blockColumns+`)
		VALUES (:id, :hub_id, :day, :level, :schedule_group, :event_id, :start_time, :end_time, :color, :coach_id, :created_at)`,
		blockRowFrom(b))
	return err
}

// Delete removes a block.
func (s *RotationBlockStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rotation_block WHERE id = $1", id)
	return err
}

// AssignCoach sets or clears the coach on a block.
func (s *RotationBlockStore) AssignCoach(ctx context.Context, id string, coachID *string) error {
	coach := sql.NullString{}
	if coachID != nil {
		coach = sql.NullString{String: *coachID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, "UPDATE rotation_block SET coach_id = $1 WHERE id = $2", coach, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rotation block not found: %w", sql.ErrNoRows)
	}
	return nil
}
