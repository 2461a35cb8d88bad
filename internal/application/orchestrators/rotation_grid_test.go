package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"clubgrid/internal/application/coalesce"
	"clubgrid/internal/domain/rotation"
)

// --- mocks ---

type mockLevelStore struct {
	levels map[string][]rotation.ActiveLevel // keyed by day
}

// ListActiveLevels implements RotationLevelStore.
func (m *mockLevelStore) ListActiveLevels(_ context.Context, _, day string) ([]rotation.ActiveLevel, error) {
	return m.levels[day], nil
}

type mockLayoutStore struct {
	layouts map[string]rotation.GridLayout
	saves   []rotation.GridLayout
	saveErr error
}

// Get implements RotationLayoutStore.
func (m *mockLayoutStore) Get(_ context.Context, hubID, day string) (rotation.GridLayout, bool, error) {
	gl, ok := m.layouts[LayoutKey(hubID, day)]
	return gl, ok, nil
}

// Save implements RotationLayoutStore.
func (m *mockLayoutStore) Save(_ context.Context, gl rotation.GridLayout) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, gl)
	m.layouts[LayoutKey(gl.HubID, gl.Day)] = gl
	return nil
}

type mockBlockStore struct {
	blocks    []rotation.RotationBlock
	createErr error
	listCalls int
}

// ListByDay implements RotationBlockStore.
func (m *mockBlockStore) ListByDay(_ context.Context, hubID, day string) ([]rotation.RotationBlock, error) {
	m.listCalls++
	var out []rotation.RotationBlock
	for _, b := range m.blocks {
		if b.HubID == hubID && b.Day == day {
			out = append(out, b)
		}
	}
	return out, nil
}

// Create implements RotationBlockStore.
func (m *mockBlockStore) Create(_ context.Context, b rotation.RotationBlock) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.blocks = append(m.blocks, b)
	return nil
}

// Delete implements RotationBlockStore.
func (m *mockBlockStore) Delete(_ context.Context, id string) error {
	for i, b := range m.blocks {
		if b.ID == id {
			m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// AssignCoach implements RotationBlockStore.
func (m *mockBlockStore) AssignCoach(_ context.Context, id string, coachID *string) error {
	for i, b := range m.blocks {
		if b.ID == id {
			m.blocks[i].CoachID = coachID
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockEventStore struct {
	events map[string]rotation.Event
}

// GetByID implements RotationEventStore.
func (m *mockEventStore) GetByID(_ context.Context, id string) (rotation.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return rotation.Event{}, sql.ErrNoRows
	}
	return ev, nil
}

// manualSaver records scheduled saves per key, keeping only the latest,
// and runs them when told.
type manualSaver struct {
	pending map[string]coalesce.Task
	order   []string
}

// Schedule implements LayoutSaveScheduler.
func (s *manualSaver) Schedule(key string, task coalesce.Task) {
	if _, ok := s.pending[key]; !ok {
		s.order = append(s.order, key)
	}
	s.pending[key] = task
}

func (s *manualSaver) runAll(t *testing.T) {
	t.Helper()
	for _, key := range s.order {
		if err := s.pending[key](context.Background()); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}
	s.pending = map[string]coalesce.Task{}
	s.order = nil
}

type gridFixture struct {
	levels  *mockLevelStore
	layouts *mockLayoutStore
	blocks  *mockBlockStore
	events  *mockEventStore
	saver   *manualSaver
	deps    RotationGridDeps
}

func at(s string) rotation.TimeOfDay { return rotation.MustParseTimeOfDay(s) }

func newGridFixture() *gridFixture {
	f := &gridFixture{
		levels: &mockLevelStore{levels: map[string][]rotation.ActiveLevel{
			rotation.Monday: {
				{Level: "A", StartTime: at("09:00"), EndTime: at("10:00")},
				{Level: "B", StartTime: at("09:00"), EndTime: at("10:00")},
				{Level: "C", StartTime: at("09:30"), EndTime: at("10:30")},
			},
			rotation.Tuesday: {
				{Level: "A", StartTime: at("16:00"), EndTime: at("17:00")},
				{Level: "D", StartTime: at("16:00"), EndTime: at("18:00")},
			},
		}},
		layouts: &mockLayoutStore{layouts: map[string]rotation.GridLayout{}},
		blocks:  &mockBlockStore{},
		events: &mockEventStore{events: map[string]rotation.Event{
			"ev-1":  {ID: "ev-1", HubID: "hub-1", Name: "Vault", Color: "#ff0000"},
			"ev-99": {ID: "ev-99", HubID: "hub-2", Name: "Other", Color: "#00ff00"},
		}},
		saver: &manualSaver{pending: map[string]coalesce.Task{}},
	}
	n := 0
	f.deps = RotationGridDeps{
		LevelStore:  f.levels,
		LayoutStore: f.layouts,
		BlockStore:  f.blocks,
		EventStore:  f.events,
		Saver:       f.saver,
		GenerateID:  func() string { n++; return fmt.Sprintf("block-%d", n) },
		Now:         fixedNow,
	}
	return f
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func openGrid(t *testing.T, f *gridFixture, day string) *RotationGrid {
	t.Helper()
	g, err := OpenRotationGrid(context.Background(), f.deps, "hub-1", day)
	if err != nil {
		t.Fatalf("OpenRotationGrid: %v", err)
	}
	return g
}

func labels(v RotationGridView) []string {
	var out []string
	for _, c := range v.Columns {
		out = append(out, c.Label)
	}
	return out
}

// --- tests ---

// TestOpenRotationGrid_Defaults tests the natural order and time range.
func TestOpenRotationGrid_Defaults(t *testing.T) {
	f := newGridFixture()
	v := openGrid(t, f, rotation.Monday).View()

	if !reflect.DeepEqual(labels(v), []string{"A", "B", "C"}) {
		t.Errorf("columns = %v, want [A B C]", labels(v))
	}
	if v.RangeStart.String() != "09:00" || v.RangeEnd.String() != "10:30" {
		t.Errorf("range = %s-%s, want 09:00-10:30", v.RangeStart, v.RangeEnd)
	}
	if len(v.Rows) != 18 {
		t.Errorf("rows = %d, want 18", len(v.Rows))
	}
	if v.Empty {
		t.Error("grid should not be empty")
	}
}

// TestOpenRotationGrid_Validation tests rejected inputs.
func TestOpenRotationGrid_Validation(t *testing.T) {
	f := newGridFixture()
	if _, err := OpenRotationGrid(context.Background(), f.deps, "", rotation.Monday); err != rotation.ErrEmptyHubID {
		t.Errorf("empty hub err = %v", err)
	}
	if _, err := OpenRotationGrid(context.Background(), f.deps, "hub-1", "funday"); err != rotation.ErrInvalidDay {
		t.Errorf("bad day err = %v", err)
	}
}

// TestOpenRotationGrid_NoLevels tests the empty-day guard.
func TestOpenRotationGrid_NoLevels(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Sunday)
	v := g.View()
	if !v.Empty || len(v.Columns) != 0 || len(v.Rows) != 0 {
		t.Errorf("view = %+v, want empty", v)
	}
	if g.PressCell(0, 0) {
		t.Error("press on an empty grid should be ignored")
	}
}

// TestOpenRotationGrid_StaleLayout tests that a stale stored layout is repaired silently.
func TestOpenRotationGrid_StaleLayout(t *testing.T) {
	f := newGridFixture()
	f.layouts.layouts[LayoutKey("hub-1", rotation.Monday)] = rotation.GridLayout{
		HubID: "hub-1", Day: rotation.Monday,
		Layout: rotation.Layout{Order: rotation.ColumnOrder{3, 1, 0, 2}, Groups: rotation.CombinedGroups{{0, 1}}},
	}
	v := openGrid(t, f, rotation.Monday).View()
	if !reflect.DeepEqual(labels(v), []string{"A", "B", "C"}) {
		t.Errorf("columns = %v, want [A B C]", labels(v))
	}
	if len(f.saver.pending) != 0 {
		t.Error("repair alone should not schedule a save")
	}
}

// TestRotationGrid_CombineAndSave tests combining A and B and the deferred save.
func TestRotationGrid_CombineAndSave(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)

	if !g.CombineColumns(0) {
		t.Fatal("combine should succeed")
	}
	v := g.View()
	if !reflect.DeepEqual(labels(v), []string{"A/B", "C"}) {
		t.Errorf("columns = %v, want [A/B C]", labels(v))
	}
	if len(f.layouts.saves) != 0 {
		t.Error("save must be deferred")
	}
	f.saver.runAll(t)
	if len(f.layouts.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(f.layouts.saves))
	}
	saved := f.layouts.saves[0]
	if saved.HubID != "hub-1" || saved.Day != rotation.Monday {
		t.Errorf("saved key = %s/%s", saved.HubID, saved.Day)
	}
	if !reflect.DeepEqual(saved.Layout.Groups, rotation.CombinedGroups{{0, 1}}) {
		t.Errorf("saved groups = %v, want [[0 1]]", saved.Layout.Groups)
	}
	if !saved.UpdatedAt.Equal(fixedTime) {
		t.Errorf("UpdatedAt = %v", saved.UpdatedAt)
	}

	reopened := openGrid(t, f, rotation.Monday).View()
	if !reflect.DeepEqual(labels(reopened), []string{"A/B", "C"}) {
		t.Errorf("after reopen columns = %v", labels(reopened))
	}
}

// TestRotationGrid_CombineLastColumn tests that the rightmost column has nothing to combine with.
func TestRotationGrid_CombineLastColumn(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	if g.CombineColumns(2) {
		t.Error("combine on the last column should fail")
	}
	if len(f.saver.pending) != 0 {
		t.Error("no save expected")
	}
}

// TestRotationGrid_SplitColumn tests splitting a three-member group.
func TestRotationGrid_SplitColumn(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	g.CombineColumns(0)
	g.CombineColumns(0)
	if got := labels(g.View()); !reflect.DeepEqual(got, []string{"A/B/C"}) {
		t.Fatalf("columns = %v, want [A/B/C]", got)
	}
	if g.SplitColumn(0, 2) {
		t.Error("split after the last member should fail")
	}
	if !g.SplitColumn(0, 0) {
		t.Fatal("split should succeed")
	}
	if got := labels(g.View()); !reflect.DeepEqual(got, []string{"A", "B/C"}) {
		t.Errorf("columns = %v, want [A B/C]", got)
	}
}

// TestRotationGrid_MoveColumn tests reordering with a coalesced save.
func TestRotationGrid_MoveColumn(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)

	if !g.MoveColumn(0, 2) {
		t.Fatal("move should succeed")
	}
	if got := labels(g.View()); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("columns = %v, want [B C A]", got)
	}
	g.MoveColumn(2, 0)
	if g.MoveColumn(1, 1) {
		t.Error("move onto itself should be a no-op")
	}
	if len(f.saver.pending) != 1 {
		t.Errorf("pending saves = %d, want 1 coalesced key", len(f.saver.pending))
	}
	f.saver.runAll(t)
	if len(f.layouts.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(f.layouts.saves))
	}
	if !reflect.DeepEqual(f.layouts.saves[0].Layout.Order, rotation.ColumnOrder{0, 1, 2}) {
		t.Errorf("saved order = %v, want latest [0 1 2]", f.layouts.saves[0].Layout.Order)
	}
}

// TestRotationGrid_MoveCombinedColumn tests that a group moves as one column.
func TestRotationGrid_MoveCombinedColumn(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	g.CombineColumns(0)
	if !g.MoveColumn(0, 1) {
		t.Fatal("move should succeed")
	}
	v := g.View()
	if got := labels(v); !reflect.DeepEqual(got, []string{"C", "A/B"}) {
		t.Errorf("columns = %v, want [C A/B]", got)
	}
	if !reflect.DeepEqual(v.Layout.Order, rotation.ColumnOrder{2, 0, 1}) {
		t.Errorf("order = %v, want [2 0 1]", v.Layout.Order)
	}
}

// TestRotationGrid_SwitchDayKeepsCapturedKey tests a pending save surviving a day switch.
func TestRotationGrid_SwitchDayKeepsCapturedKey(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	g.MoveColumn(0, 1)

	if err := g.SwitchDay(context.Background(), rotation.Tuesday); err != nil {
		t.Fatalf("SwitchDay: %v", err)
	}
	if got := labels(g.View()); !reflect.DeepEqual(got, []string{"A", "D"}) {
		t.Errorf("tuesday columns = %v, want [A D]", got)
	}
	g.MoveColumn(1, 0)

	f.saver.runAll(t)
	if len(f.layouts.saves) != 2 {
		t.Fatalf("saves = %d, want 2", len(f.layouts.saves))
	}
	mon := f.layouts.layouts[LayoutKey("hub-1", rotation.Monday)]
	tue := f.layouts.layouts[LayoutKey("hub-1", rotation.Tuesday)]
	if !reflect.DeepEqual(mon.Layout.Order, rotation.ColumnOrder{1, 0, 2}) {
		t.Errorf("monday order = %v, want [1 0 2]", mon.Layout.Order)
	}
	if !reflect.DeepEqual(tue.Layout.Order, rotation.ColumnOrder{1, 0}) {
		t.Errorf("tuesday order = %v, want [1 0]", tue.Layout.Order)
	}
}

// TestRotationGrid_DragCreatesBlock tests the full drag on a combined column.
func TestRotationGrid_DragCreatesBlock(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	g.CombineColumns(0)
	ctx := context.Background()
	if err := g.SelectEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("SelectEvent: %v", err)
	}

	// rows 2..5 are 09:10..09:25
	if !g.PressCell(0, 2) {
		t.Fatal("press should start a drag")
	}
	for r := 3; r <= 5; r++ {
		g.EnterCell(0, r)
	}
	g.EnterCell(1, 8) // other column, ignored
	if v := g.View(); v.Selection == nil || v.Selection.EndRow != 5 {
		t.Fatalf("selection = %+v, want EndRow 5", v.Selection)
	}

	block, created, err := g.Release(ctx)
	if err != nil || !created {
		t.Fatalf("Release: created=%v err=%v", created, err)
	}
	if block.Level != "A" || block.StartTime.String() != "09:10" || block.EndTime.String() != "09:30" {
		t.Errorf("block = %s %s-%s, want A 09:10-09:30", block.Level, block.StartTime, block.EndTime)
	}
	if block.Color != "#ff0000" || block.EventID != "ev-1" || block.ID != "block-1" {
		t.Errorf("block = %+v", block)
	}
	v := g.View()
	if len(v.Blocks) != 1 {
		t.Errorf("blocks = %d, want 1 after refresh", len(v.Blocks))
	}
	if v.Selection != nil {
		t.Error("selection should be cleared")
	}
	if len(f.saver.pending) != 1 {
		t.Error("block creation must not add a layout save")
	}
}

// TestRotationGrid_ReleaseWithoutEvent tests that nothing is created without an event.
func TestRotationGrid_ReleaseWithoutEvent(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	if g.PressCell(0, 0) {
		t.Error("press without event should be ignored")
	}
	if _, created, err := g.Release(context.Background()); created || err != nil {
		t.Errorf("Release = %v, %v", created, err)
	}
}

// TestRotationGrid_ReleaseStoreFailure tests that a failed write clears the drag and reports.
func TestRotationGrid_ReleaseStoreFailure(t *testing.T) {
	f := newGridFixture()
	f.blocks.createErr = errors.New("disk full")
	g := openGrid(t, f, rotation.Monday)
	ctx := context.Background()
	g.SelectEvent(ctx, "ev-1")
	g.PressCell(0, 0)

	if _, created, err := g.Release(ctx); created || err == nil {
		t.Errorf("Release = created %v err %v, want failure", created, err)
	}
	if g.View().Selection != nil {
		t.Error("drag should be cleared after a failed release")
	}
	if len(g.View().Blocks) != 0 {
		t.Error("no block should be shown")
	}
}

// TestRotationGrid_SelectEventOtherHub tests hub scoping of event templates.
func TestRotationGrid_SelectEventOtherHub(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	if err := g.SelectEvent(context.Background(), "ev-99"); err != ErrEventOtherHub {
		t.Errorf("err = %v, want ErrEventOtherHub", err)
	}
	if err := g.SelectEvent(context.Background(), "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

// TestRotationGrid_DeleteAndAssignCoach tests immediate block mutations.
func TestRotationGrid_DeleteAndAssignCoach(t *testing.T) {
	f := newGridFixture()
	f.blocks.blocks = []rotation.RotationBlock{
		{ID: "b1", HubID: "hub-1", Day: rotation.Monday, Level: "A", EventID: "ev-1", StartTime: at("09:00"), EndTime: at("09:30"), Color: "#ff0000"},
		{ID: "b2", HubID: "hub-1", Day: rotation.Tuesday, Level: "A", EventID: "ev-1", StartTime: at("16:00"), EndTime: at("16:30"), Color: "#ff0000"},
	}
	g := openGrid(t, f, rotation.Monday)
	ctx := context.Background()

	coach := "coach-1"
	if err := g.AssignCoach(ctx, "b1", &coach); err != nil {
		t.Fatalf("AssignCoach: %v", err)
	}
	if c := g.View().Blocks[0].CoachID; c == nil || *c != "coach-1" {
		t.Errorf("coach = %v, want coach-1", c)
	}
	empty := ""
	g.AssignCoach(ctx, "b1", &empty)
	if c := g.View().Blocks[0].CoachID; c != nil {
		t.Errorf("coach = %v, want cleared", *c)
	}

	if err := g.DeleteBlock(ctx, "b2"); err != ErrBlockNotOnGrid {
		t.Errorf("delete other day err = %v, want ErrBlockNotOnGrid", err)
	}
	if err := g.DeleteBlock(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	if len(g.View().Blocks) != 0 {
		t.Error("block should be gone from the view")
	}
}

// TestRotationGrid_SaveFailureIsReported tests that a failed deferred save surfaces to the saver.
func TestRotationGrid_SaveFailureIsReported(t *testing.T) {
	f := newGridFixture()
	f.layouts.saveErr = errors.New("locked")
	g := openGrid(t, f, rotation.Monday)
	g.MoveColumn(0, 1)
	task := f.saver.pending[LayoutKey("hub-1", rotation.Monday)]
	if err := task(context.Background()); err == nil {
		t.Error("expected save error")
	}
}

// TestRotationGrid_WithCoalesceScheduler tests the grid against the real scheduler.
func TestRotationGrid_WithCoalesceScheduler(t *testing.T) {
	f := newGridFixture()
	sched := coalesce.New(time.Hour)
	f.deps.Saver = sched
	g := openGrid(t, f, rotation.Monday)
	g.MoveColumn(0, 2)
	g.MoveColumn(0, 2)

	if !sched.Pending(LayoutKey("hub-1", rotation.Monday)) {
		t.Fatal("save should be pending")
	}
	if err := sched.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(f.layouts.saves) != 1 {
		t.Fatalf("saves = %d, want 1", len(f.layouts.saves))
	}
	if !reflect.DeepEqual(f.layouts.saves[0].Layout.Order, rotation.ColumnOrder{2, 0, 1}) {
		t.Errorf("order = %v, want [2 0 1]", f.layouts.saves[0].Layout.Order)
	}
}

// TestRotationGrid_ReloadKeepsHeldLayout tests that a schedule edit on the
// open day keeps an unsaved combine and the save that follows.
func TestRotationGrid_ReloadKeepsHeldLayout(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	if !g.CombineColumns(0) {
		t.Fatal("combine should succeed")
	}

	f.levels.levels[rotation.Monday][2].EndTime = at("11:00")
	if err := g.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	v := g.View()
	if !reflect.DeepEqual(labels(v), []string{"A/B", "C"}) {
		t.Errorf("columns after reload = %v, want [A/B C]", labels(v))
	}
	if !reflect.DeepEqual(v.Layout.Groups, rotation.CombinedGroups{{0, 1}}) {
		t.Errorf("groups after reload = %v, want [[0 1]]", v.Layout.Groups)
	}
	if v.RangeEnd != at("11:00") {
		t.Errorf("range end = %s, want 11:00", v.RangeEnd)
	}

	f.saver.runAll(t)
	if !g.MoveColumn(1, 0) {
		t.Fatal("move should succeed")
	}
	f.saver.runAll(t)
	last := f.layouts.saves[len(f.layouts.saves)-1]
	if !reflect.DeepEqual(last.Layout.Groups, rotation.CombinedGroups{{0, 1}}) {
		t.Errorf("groups after move = %v, want [[0 1]]", last.Layout.Groups)
	}
	if !reflect.DeepEqual(last.Layout.Order, rotation.ColumnOrder{2, 0, 1}) {
		t.Errorf("order after move = %v, want [2 0 1]", last.Layout.Order)
	}
}

// TestRotationGrid_ReloadResetsOnLevelCountChange tests that a held order
// that no longer fits the levels falls back to the natural order.
func TestRotationGrid_ReloadResetsOnLevelCountChange(t *testing.T) {
	f := newGridFixture()
	g := openGrid(t, f, rotation.Monday)
	g.CombineColumns(0)

	f.levels.levels[rotation.Monday] = append(f.levels.levels[rotation.Monday],
		rotation.ActiveLevel{Level: "D", StartTime: at("10:00"), EndTime: at("11:00")})
	if err := g.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	v := g.View()
	if !reflect.DeepEqual(labels(v), []string{"A", "B", "C", "D"}) {
		t.Errorf("columns = %v, want [A B C D]", labels(v))
	}
	if len(v.Layout.Groups) != 0 {
		t.Errorf("groups = %v, want none", v.Layout.Groups)
	}
}

// TestRotationGrid_ReloadReadsStoredLayoutWhenNoneHeld tests a day that had no
// levels when opened.
func TestRotationGrid_ReloadReadsStoredLayoutWhenNoneHeld(t *testing.T) {
	f := newGridFixture()
	f.layouts.layouts[LayoutKey("hub-1", rotation.Wednesday)] = rotation.GridLayout{
		HubID: "hub-1", Day: rotation.Wednesday,
		Layout: rotation.Layout{Order: rotation.ColumnOrder{1, 0}},
	}
	g := openGrid(t, f, rotation.Wednesday)
	if !g.View().Empty {
		t.Fatal("wednesday should start empty")
	}

	f.levels.levels[rotation.Wednesday] = []rotation.ActiveLevel{
		{Level: "A", StartTime: at("18:00"), EndTime: at("19:00")},
		{Level: "B", StartTime: at("18:00"), EndTime: at("19:00")},
	}
	if err := g.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := labels(g.View()); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("columns = %v, want [B A]", got)
	}
}
