package practiceschedule

import (
	"context"

	"clubgrid/internal/domain/rotation"
	domain "clubgrid/internal/domain/schedule"
)

// Store persists PracticeSchedule state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.PracticeSchedule, error)
	Save(ctx context.Context, value domain.PracticeSchedule) error
	Delete(ctx context.Context, id string) error
	ListByHub(ctx context.Context, hubID string) ([]domain.PracticeSchedule, error)
	ListByDay(ctx context.Context, hubID, day string) ([]domain.PracticeSchedule, error)
	// ListActiveLevels derives the grid's levels for a hub and day in natural order.
	ListActiveLevels(ctx context.Context, hubID, day string) ([]rotation.ActiveLevel, error)
}
