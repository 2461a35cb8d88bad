package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"clubgrid/internal/domain/rotation"
	domain "clubgrid/internal/domain/schedule"
)

type practiceRow struct {
	ID            string `db:"id"`
	HubID         string `db:"hub_id"`
	Level         string `db:"level"`
	ScheduleGroup string `db:"schedule_group"`
	Day           string `db:"day"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
	IsExternal    bool   `db:"is_external"`
}

func (r practiceRow) toDomain() (domain.PracticeSchedule, error) {
	p := domain.PracticeSchedule{
		ID: r.ID, HubID: r.HubID, Level: r.Level, ScheduleGroup: r.ScheduleGroup,
		Day: r.Day, IsExternalGroup: r.IsExternal,
	}
	var err error
	if p.StartTime, err = rotation.ParseTimeOfDay(r.StartTime); err != nil {
		return domain.PracticeSchedule{}, fmt.Errorf("practice schedule %s start: %w", r.ID, err)
	}
	if p.EndTime, err = rotation.ParseTimeOfDay(r.EndTime); err != nil {
		return domain.PracticeSchedule{}, fmt.Errorf("practice schedule %s end: %w", r.ID, err)
	}
	return p, nil
}

const practiceColumns = "id, hub_id, level, schedule_group, day, start_time, end_time, is_external"

// PracticeScheduleStore implements practiceschedule.Store on PostgreSQL.
type PracticeScheduleStore struct {
	db DB
}

// NewPracticeScheduleStore creates a practice schedule store.
func NewPracticeScheduleStore(db DB) *PracticeScheduleStore {
	return &PracticeScheduleStore{db: db}
}

func (s *PracticeScheduleStore) selectRows(ctx context.Context, query string, args ...any) ([]domain.PracticeSchedule, error) {
	var rows []practiceRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.PracticeSchedule, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetByID retrieves a practice schedule; the error wraps sql.ErrNoRows when absent.
func (s *PracticeScheduleStore) GetByID(ctx context.Context, id string) (domain.PracticeSchedule, error) {
	var row practiceRow
	err := s.db.GetContext(ctx, &row, "SELECT "+practiceColumns+" FROM practice_schedule WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return domain.PracticeSchedule{}, fmt.Errorf("practice schedule not found: %w", err)
	}
	if err != nil {
		return domain.PracticeSchedule{}, err
	}
	return row.toDomain()
}

// Save upserts a practice schedule.
func (s *PracticeScheduleStore) Save(ctx context.Context, p domain.PracticeSchedule) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO practice_schedule (`+practiceColumns+`)
		VALUES (:id, :hub_id, :level, :schedule_group, :day, :start_time, :end_time, :is_external)
		ON CONFLICT (id) DO UPDATE SET hub_id = EXCLUDED.hub_id, level = EXCLUDED.level,
			schedule_group = EXCLUDED.schedule_group, day = EXCLUDED.day, start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time, is_external = EXCLUDED.is_external`,
		practiceRow{
			ID: p.ID, HubID: p.HubID, Level: p.Level, ScheduleGroup: p.ScheduleGroup, Day: p.Day,
			StartTime: p.StartTime.String(), EndTime: p.EndTime.String(), IsExternal: p.IsExternalGroup,
		})
	return err
}

// Delete removes a practice schedule.
func (s *PracticeScheduleStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM practice_schedule WHERE id = $1", id)
	return err
}

// ListByHub retrieves every practice schedule of a hub.
func (s *PracticeScheduleStore) ListByHub(ctx context.Context, hubID string) ([]domain.PracticeSchedule, error) {
	return s.selectRows(ctx, "SELECT "+practiceColumns+" FROM practice_schedule WHERE hub_id = $1 ORDER BY day, start_time, level", hubID)
}

// ListByDay retrieves a hub's practice schedules for one day.
func (s *PracticeScheduleStore) ListByDay(ctx context.Context, hubID, day string) ([]domain.PracticeSchedule, error) {
	return s.selectRows(ctx, "SELECT "+practiceColumns+" FROM practice_schedule WHERE hub_id = $1 AND day = $2 ORDER BY start_time, level", hubID, day)
}

// ListActiveLevels derives the active levels for a hub and day.
func (s *PracticeScheduleStore) ListActiveLevels(ctx context.Context, hubID, day string) ([]rotation.ActiveLevel, error) {
	records, err := s.ListByDay(ctx, hubID, day)
	if err != nil {
		return nil, err
	}
	return domain.ActiveLevels(records), nil
}
