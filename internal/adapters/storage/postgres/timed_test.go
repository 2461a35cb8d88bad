package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"clubgrid/internal/adapters/http/perf"
)

type fakeDB struct {
	err   error
	calls int
}

func (f *fakeDB) GetContext(context.Context, any, string, ...any) error {
	f.calls++
	return f.err
}

func (f *fakeDB) SelectContext(context.Context, any, string, ...any) error {
	f.calls++
	return f.err
}

func (f *fakeDB) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeDB) NamedExecContext(context.Context, string, any) (sql.Result, error) {
	f.calls++
	return nil, f.err
}

// TestTimedDB_RecordsEveryCall verifies each wrapped call lands in the collector
// labelled by statement shape.
func TestTimedDB_RecordsEveryCall(t *testing.T) {
	collector := perf.NewCollector(100)
	inner := &fakeDB{}
	tdb := NewTimedDB(inner, collector, 0)
	ctx := context.Background()

	var n int
	tdb.GetContext(ctx, &n, "SELECT COUNT(*) FROM rotation_block WHERE event_id = $1", "ev-1")
	tdb.SelectContext(ctx, &[]practiceRow{}, "SELECT * FROM practice_schedule WHERE hub_id = $1", "hub-1")
	tdb.ExecContext(ctx, "DELETE FROM rotation_event WHERE id = $1", "ev-1")
	tdb.NamedExecContext(ctx, "INSERT INTO grid_layout (hub_id) VALUES (:hub_id)", map[string]any{"hub_id": "hub-1"})

	if inner.calls != 4 {
		t.Errorf("inner calls = %d, want 4", inner.calls)
	}
	snap := collector.Snapshot(time.Time{}, 10)
	if snap.Queries.Count != 4 {
		t.Fatalf("queries = %d, want 4", snap.Queries.Count)
	}
	var paths []string
	for _, p := range snap.Queries.Slowest {
		paths = append(paths, p.Path)
	}
	sort.Strings(paths)
	want := []string{"DELETE rotation_event", "INSERT grid_layout", "SELECT practice_schedule", "SELECT rotation_block"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths = %v, want %v", paths, want)
			break
		}
	}
}

// TestTimedDB_ErrorPassthrough verifies errors from the wrapped DB are returned unchanged.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	boom := errors.New("connection reset")
	tdb := NewTimedDB(&fakeDB{err: boom}, nil, time.Second)
	ctx := context.Background()

	if err := tdb.GetContext(ctx, new(int), "SELECT 1"); !errors.Is(err, boom) {
		t.Errorf("GetContext err = %v", err)
	}
	if _, err := tdb.ExecContext(ctx, "DELETE FROM grid_layout"); !errors.Is(err, boom) {
		t.Errorf("ExecContext err = %v", err)
	}
}
