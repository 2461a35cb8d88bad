package practiceschedule

import (
	"context"
	"database/sql"
	"fmt"

	"clubgrid/internal/adapters/storage"
	"clubgrid/internal/domain/rotation"
	domain "clubgrid/internal/domain/schedule"
)

const selectColumns = "SELECT id, hub_id, level, schedule_group, day, start_time, end_time, is_external FROM practice_schedule"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PracticeSchedule store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a PracticeSchedule by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.PracticeSchedule, error) {
	results, err := s.query(ctx, selectColumns+" WHERE id = ?", id)
	if err != nil {
		return domain.PracticeSchedule{}, err
	}
	if len(results) == 0 {
		return domain.PracticeSchedule{}, fmt.Errorf("practice schedule not found: %w", sql.ErrNoRows)
	}
	return results[0], nil
}

// Save persists a PracticeSchedule (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.PracticeSchedule) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO practice_schedule (id, hub_id, level, schedule_group, day, start_time, end_time, is_external) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET hub_id=excluded.hub_id, level=excluded.level, schedule_group=excluded.schedule_group, day=excluded.day, start_time=excluded.start_time, end_time=excluded.end_time, is_external=excluded.is_external",
		p.ID, p.HubID, p.Level, p.ScheduleGroup, p.Day, p.StartTime.String(), p.EndTime.String(), p.IsExternalGroup,
	)
	return err
}

// Delete removes a PracticeSchedule.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM practice_schedule WHERE id = ?", id)
	return err
}

// ListByHub retrieves every PracticeSchedule of a hub.
func (s *SQLiteStore) ListByHub(ctx context.Context, hubID string) ([]domain.PracticeSchedule, error) {
	return s.query(ctx, selectColumns+" WHERE hub_id = ? ORDER BY day, start_time, level", hubID)
}

// ListByDay retrieves a hub's PracticeSchedules for one day.
// PRE: day is a valid weekday
func (s *SQLiteStore) ListByDay(ctx context.Context, hubID, day string) ([]domain.PracticeSchedule, error) {
	return s.query(ctx, selectColumns+" WHERE hub_id = ? AND day = ? ORDER BY start_time, level", hubID, day)
}

// ListActiveLevels derives the active levels for a hub and day.
// PRE: day is a valid weekday
// POST: Returns levels in natural column order (see domain.ActiveLevels)
func (s *SQLiteStore) ListActiveLevels(ctx context.Context, hubID, day string) ([]rotation.ActiveLevel, error) {
	records, err := s.ListByDay(ctx, hubID, day)
	if err != nil {
		return nil, err
	}
	return domain.ActiveLevels(records), nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.PracticeSchedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.PracticeSchedule
	for rows.Next() {
		var (
			p          domain.PracticeSchedule
			start, end string
		)
		if err := rows.Scan(&p.ID, &p.HubID, &p.Level, &p.ScheduleGroup, &p.Day, &start, &end, &p.IsExternalGroup); err != nil {
			return nil, err
		}
		if p.StartTime, err = rotation.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("practice schedule %s start: %w", p.ID, err)
		}
		if p.EndTime, err = rotation.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("practice schedule %s end: %w", p.ID, err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
