package gridlayout

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"clubgrid/internal/adapters/storage"
	"clubgrid/internal/domain/rotation"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

// TestSQLiteStore_GetMissing verifies an unsaved layout reports not found.
func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, found, err := s.Get(context.Background(), "hub-1", rotation.Monday)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("expected found = false")
	}
}

// TestSQLiteStore_GetBadTimestamp verifies a malformed updated_at is reported.
func TestSQLiteStore_GetBadTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO grid_layout (hub_id, day, column_order, combined_groups, updated_at) VALUES (?, ?, ?, ?, ?)",
		"hub-1", rotation.Monday, "[0,1]", "[]", "yesterday"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, found, err := s.Get(ctx, "hub-1", rotation.Monday)
	if err == nil || !strings.Contains(err.Error(), "updated_at") {
		t.Errorf("err = %v, want updated_at parse error", err)
	}
	if found {
		t.Error("expected found = false on error")
	}
}

// TestSQLiteStore_SaveUpsert verifies saves round-trip and replace per hub and day.
func TestSQLiteStore_SaveUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := rotation.GridLayout{HubID: "hub-1", Day: rotation.Monday, Layout: rotation.Layout{Order: rotation.ColumnOrder{0, 1, 2}}}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := rotation.GridLayout{HubID: "hub-1", Day: rotation.Monday, Layout: rotation.Layout{
		Order:  rotation.ColumnOrder{2, 0, 1},
		Groups: rotation.CombinedGroups{{0, 1}},
	}}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other := rotation.GridLayout{HubID: "hub-1", Day: rotation.Tuesday, Layout: rotation.Layout{Order: rotation.ColumnOrder{1, 0}}}
	if err := s.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := s.Get(ctx, "hub-1", rotation.Monday)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got.Layout, second.Layout) {
		t.Errorf("layout = %+v, want %+v", got.Layout, second.Layout)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	tue, _, _ := s.Get(ctx, "hub-1", rotation.Tuesday)
	if !reflect.DeepEqual(tue.Layout.Order, rotation.ColumnOrder{1, 0}) {
		t.Errorf("tuesday order = %v, want [1 0]", tue.Layout.Order)
	}
}

// TestEncodeLayout_Empty verifies a zero layout stores as empty arrays.
func TestEncodeLayout_Empty(t *testing.T) {
	order, groups, err := EncodeLayout(rotation.Layout{})
	if err != nil {
		t.Fatalf("EncodeLayout: %v", err)
	}
	if order != "[]" || groups != "[]" {
		t.Errorf("got %q %q, want [] []", order, groups)
	}
}

// TestDecodeLayout_Invalid verifies corrupt JSON is reported.
func TestDecodeLayout_Invalid(t *testing.T) {
	if _, err := DecodeLayout("[1,", "[]"); err == nil {
		t.Error("expected decode error")
	}
}
