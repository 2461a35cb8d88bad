package gridlayout

import (
	"context"

	"clubgrid/internal/domain/rotation"
)

// Store persists the column layout of a hub's grid per day.
type Store interface {
	// Get returns the stored layout; found is false when none was ever saved.
	Get(ctx context.Context, hubID, day string) (layout rotation.GridLayout, found bool, err error)
	// Save upserts the layout keyed by (HubID, Day).
	Save(ctx context.Context, layout rotation.GridLayout) error
}
