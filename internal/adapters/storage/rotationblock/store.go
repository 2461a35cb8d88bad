package rotationblock

import (
	"context"

	"clubgrid/internal/domain/rotation"
)

// Store persists rotation blocks.
type Store interface {
	ListByDay(ctx context.Context, hubID, day string) ([]rotation.RotationBlock, error)
	GetByID(ctx context.Context, id string) (rotation.RotationBlock, error)
	Create(ctx context.Context, block rotation.RotationBlock) error
	Delete(ctx context.Context, id string) error
	// AssignCoach sets or clears (nil) the block's coach.
	AssignCoach(ctx context.Context, id string, coachID *string) error
}
