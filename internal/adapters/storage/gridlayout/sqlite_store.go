package gridlayout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"clubgrid/internal/adapters/storage"
	"clubgrid/internal/domain/rotation"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new grid layout store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the layout for a hub and day.
// PRE: hubID and day are non-empty
// POST: found is false and err nil when no row exists
func (s *SQLiteStore) Get(ctx context.Context, hubID, day string) (rotation.GridLayout, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT column_order, combined_groups, updated_at FROM grid_layout WHERE hub_id = ? AND day = ?",
		hubID, day)
	var orderJSON, groupsJSON, updatedAt string
	err := row.Scan(&orderJSON, &groupsJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return rotation.GridLayout{}, false, nil
	}
	if err != nil {
		return rotation.GridLayout{}, false, err
	}

	gl := rotation.GridLayout{HubID: hubID, Day: day}
	layout, err := DecodeLayout(orderJSON, groupsJSON)
	if err != nil {
		return rotation.GridLayout{}, false, fmt.Errorf("grid layout %s/%s: %w", hubID, day, err)
	}
	gl.Layout = layout
	gl.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return rotation.GridLayout{}, false, fmt.Errorf("grid layout %s/%s: updated_at: %w", hubID, day, err)
	}
	return gl, true, nil
}

// Save upserts the layout.
// PRE: HubID and Day are non-empty
// POST: exactly one row exists for (HubID, Day)
func (s *SQLiteStore) Save(ctx context.Context, gl rotation.GridLayout) error {
	orderJSON, groupsJSON, err := EncodeLayout(gl.Layout)
	if err != nil {
		return err
	}
	if gl.UpdatedAt.IsZero() {
		gl.UpdatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grid_layout (hub_id, day, column_order, combined_groups, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hub_id, day) DO UPDATE SET column_order=excluded.column_order, combined_groups=excluded.combined_groups, updated_at=excluded.updated_at`,
		gl.HubID, gl.Day, orderJSON, groupsJSON, gl.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// EncodeLayout renders the order and groups as JSON arrays. Nil slices encode as [].
func EncodeLayout(l rotation.Layout) (order, groups string, err error) {
	o := l.Order
	if o == nil {
		o = rotation.ColumnOrder{}
	}
	g := l.Groups
	if g == nil {
		g = rotation.CombinedGroups{}
	}
	ob, err := json.Marshal(o)
	if err != nil {
		return "", "", fmt.Errorf("encode column order: %w", err)
	}
	gb, err := json.Marshal(g)
	if err != nil {
		return "", "", fmt.Errorf("encode combined groups: %w", err)
	}
	return string(ob), string(gb), nil
}

// DecodeLayout parses the stored JSON arrays. Empty strings decode as empty.
func DecodeLayout(order, groups string) (rotation.Layout, error) {
	var l rotation.Layout
	if order != "" {
		if err := json.Unmarshal([]byte(order), &l.Order); err != nil {
			return rotation.Layout{}, fmt.Errorf("decode column order: %w", err)
		}
	}
	if groups != "" {
		if err := json.Unmarshal([]byte(groups), &l.Groups); err != nil {
			return rotation.Layout{}, fmt.Errorf("decode combined groups: %w", err)
		}
	}
	return l, nil
}
