package rotationevent

import (
	"context"
	"errors"

	"clubgrid/internal/domain/rotation"
)

// ErrInUse is returned by Delete while blocks still reference the event.
var ErrInUse = errors.New("rotation event is used by rotation blocks")

// Store persists rotation event templates.
type Store interface {
	GetByID(ctx context.Context, id string) (rotation.Event, error)
	ListByHub(ctx context.Context, hubID string) ([]rotation.Event, error)
	Save(ctx context.Context, event rotation.Event) error
	Delete(ctx context.Context, id string) error
}
