package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"clubgrid/internal/domain/rotation"
)

type gridLayoutRow struct {
	HubID          string        `db:"hub_id"`
	Day            string        `db:"day"`
	ColumnOrder    pq.Int64Array `db:"column_order"`
	CombinedGroups string        `db:"combined_groups"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (r gridLayoutRow) toDomain() (rotation.GridLayout, error) {
	gl := rotation.GridLayout{HubID: r.HubID, Day: r.Day, UpdatedAt: r.UpdatedAt}
	gl.Layout.Order = make(rotation.ColumnOrder, len(r.ColumnOrder))
	for i, v := range r.ColumnOrder {
		gl.Layout.Order[i] = int(v)
	}
	if r.CombinedGroups != "" {
		if err := json.Unmarshal([]byte(r.CombinedGroups), &gl.Layout.Groups); err != nil {
			return rotation.GridLayout{}, fmt.Errorf("decode combined groups: %w", err)
		}
	}
	return gl, nil
}

func gridLayoutRowFrom(gl rotation.GridLayout) (gridLayoutRow, error) {
	row := gridLayoutRow{HubID: gl.HubID, Day: gl.Day, UpdatedAt: gl.UpdatedAt}
	row.ColumnOrder = make(pq.Int64Array, len(gl.Layout.Order))
	for i, v := range gl.Layout.Order {
		row.ColumnOrder[i] = int64(v)
	}
	groups := gl.Layout.Groups
	if groups == nil {
		groups = rotation.CombinedGroups{}
	}
	b, err := json.Marshal(groups)
	if err != nil {
		return gridLayoutRow{}, fmt.Errorf("encode combined groups: %w", err)
	}
	row.CombinedGroups = string(b)
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	return row, nil
}

// GridLayoutStore implements gridlayout.Store on PostgreSQL.
type GridLayoutStore struct {
	db DB
}

// NewGridLayoutStore creates a grid layout store.
func NewGridLayoutStore(db DB) *GridLayoutStore {
	return &GridLayoutStore{db: db}
}

// Get retrieves the layout for a hub and day; found is false when absent.
func (s *GridLayoutStore) Get(ctx context.Context, hubID, day string) (rotation.GridLayout, bool, error) {
	var row gridLayoutRow
	err := s.db.GetContext(ctx, &row,
		"SELECT hub_id, day, column_order, combined_groups, updated_at FROM grid_layout WHERE hub_id = $1 AND day = $2",
		hubID, day)
	if err == sql.ErrNoRows {
		return rotation.GridLayout{}, false, nil
	}
	if err != nil {
		return rotation.GridLayout{}, false, err
	}
	gl, err := row.toDomain()
	if err != nil {
		return rotation.GridLayout{}, false, fmt.Errorf("grid layout %s/%s: %w", hubID, day, err)
	}
	return gl, true, nil
}

// Save upserts the layout keyed by hub and day.
func (s *GridLayoutStore) Save(ctx context.Context, gl rotation.GridLayout) error {
	row, err := gridLayoutRowFrom(gl)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO grid_layout (hub_id, day, column_order, combined_groups, updated_at)
		VALUES (:hub_id, :day, :column_order, :combined_groups, :updated_at)
		ON CONFLICT (hub_id, day) DO UPDATE SET column_order = EXCLUDED.column_order,
			combined_groups = EXCLUDED.combined_groups, updated_at = EXCLUDED.updated_at`,
		row)
	return err
}
