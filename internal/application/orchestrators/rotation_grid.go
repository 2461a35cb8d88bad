package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clubgrid/internal/application/coalesce"
	"clubgrid/internal/domain/rotation"
)

// Rotation grid errors.
var (
	ErrBlockNotOnGrid = errors.New("rotation block is not on this grid")
	ErrEventOtherHub  = errors.New("rotation event belongs to another hub")
)

// RotationLevelStore provides the active levels of a hub's day.
type RotationLevelStore interface {
	ListActiveLevels(ctx context.Context, hubID, day string) ([]rotation.ActiveLevel, error)
}

// RotationLayoutStore loads and saves per-day grid layouts.
type RotationLayoutStore interface {
	Get(ctx context.Context, hubID, day string) (rotation.GridLayout, bool, error)
	Save(ctx context.Context, layout rotation.GridLayout) error
}

// RotationBlockStore is the block persistence the grid needs.
type RotationBlockStore interface {
	ListByDay(ctx context.Context, hubID, day string) ([]rotation.RotationBlock, error)
	Create(ctx context.Context, block rotation.RotationBlock) error
	Delete(ctx context.Context, id string) error
	AssignCoach(ctx context.Context, id string, coachID *string) error
}

// RotationEventStore resolves the event template a drag creates blocks from.
type RotationEventStore interface {
	GetByID(ctx context.Context, id string) (rotation.Event, error)
}

// LayoutSaveScheduler defers layout writes; coalesce.Scheduler satisfies it.
type LayoutSaveScheduler interface {
	Schedule(key string, task coalesce.Task)
}

// RotationGridDeps holds dependencies for the rotation grid.
type RotationGridDeps struct {
	LevelStore  RotationLevelStore
	LayoutStore RotationLayoutStore
	BlockStore  RotationBlockStore
	EventStore  RotationEventStore
	Saver       LayoutSaveScheduler
	GenerateID  func() string
	Now         func() time.Time
}

// LayoutKey is the coalescing key for a hub's layout on a day.
func LayoutKey(hubID, day string) string {
	return hubID + "/" + day
}

// RotationGrid is the interactive grid of one hub. It owns the in-memory
// layout and drag state for the day being viewed; layout changes are saved
// through the deferred saver while block changes are written immediately.
type RotationGrid struct {
	mu   sync.Mutex
	deps RotationGridDeps

	hubID    string
	day      string
	levels   []rotation.ActiveLevel
	layout   rotation.Layout
	columns  []rotation.Column
	blocks   []rotation.RotationBlock
	start    rotation.TimeOfDay
	end      rotation.TimeOfDay
	hasRange bool
	event    *rotation.Event
	selector *rotation.Selector
}

// RotationGridView is a consistent snapshot of the grid for rendering.
type RotationGridView struct {
	HubID         string
	Day           string
	Levels        []rotation.ActiveLevel
	Layout        rotation.Layout
	Columns       []rotation.Column
	Rows          []rotation.RowLabel
	RangeStart    rotation.TimeOfDay
	RangeEnd      rotation.TimeOfDay
	Empty         bool
	Blocks        []rotation.RotationBlock
	SelectedEvent *rotation.Event
	Selection     *rotation.Selection
}

// OpenRotationGrid loads a hub's grid for day.
// PRE: hubID is non-empty; day is a valid weekday
// POST: Returns a grid showing persisted state with a reconciled layout
func OpenRotationGrid(ctx context.Context, deps RotationGridDeps, hubID, day string) (*RotationGrid, error) {
	if strings.TrimSpace(hubID) == "" {
		return nil, rotation.ErrEmptyHubID
	}
	if deps.GenerateID == nil || deps.Now == nil {
		return nil, errors.New("rotation grid: GenerateID and Now are required")
	}
	g := &RotationGrid{deps: deps, hubID: hubID}
	if err := g.load(ctx, day); err != nil {
		return nil, err
	}
	slog.Info("rotation_grid_event", "event", "grid_opened", "hub_id", hubID, "day", day, "levels", len(g.levels))
	return g, nil
}

// HubID returns the hub the grid belongs to.
func (g *RotationGrid) HubID() string {
	return g.hubID
}

// Day returns the day currently shown.
func (g *RotationGrid) Day() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.day
}

// SwitchDay shows another day with freshly loaded state. A save still pending
// for the previous day fires later under that day's key.
// PRE: day is a valid weekday
// POST: grid shows day; any drag in progress is abandoned
func (g *RotationGrid) SwitchDay(ctx context.Context, day string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev := g.day
	if err := g.load(ctx, day); err != nil {
		return err
	}
	slog.Info("rotation_grid_event", "event", "day_switched", "hub_id", g.hubID, "from", prev, "to", day)
	return nil
}

// Reload re-reads levels and blocks for the current day and reconciles the
// layout already held against the new level count. The persisted layout is
// read only when the grid holds none, so an edit whose save is still pending
// survives.
// POST: held order kept when it is still a permutation; groups sanitized
func (g *RotationGrid) Reload(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	levels, err := g.deps.LevelStore.ListActiveLevels(ctx, g.hubID, g.day)
	if err != nil {
		return fmt.Errorf("load active levels: %w", err)
	}
	blocks, err := g.deps.BlockStore.ListByDay(ctx, g.hubID, g.day)
	if err != nil {
		return fmt.Errorf("load rotation blocks: %w", err)
	}

	held := g.layout
	if len(held.Order) == 0 {
		stored, _, err := g.deps.LayoutStore.Get(ctx, g.hubID, g.day)
		if err != nil {
			return fmt.Errorf("load grid layout: %w", err)
		}
		held = stored.Layout
	}
	layout := held.Reconcile(len(levels))
	if len(held.Order) > 0 && !held.Order.IsPermutation(len(levels)) {
		slog.Warn("grid_layout_reset", "hub_id", g.hubID, "day", g.day, "held_columns", len(held.Order), "levels", len(levels))
	}

	g.apply(levels, blocks, layout)
	return nil
}

// load replaces all day state. Callers hold mu (or own g exclusively).
func (g *RotationGrid) load(ctx context.Context, day string) error {
	if !rotation.IsValidDay(day) {
		return rotation.ErrInvalidDay
	}
	levels, err := g.deps.LevelStore.ListActiveLevels(ctx, g.hubID, day)
	if err != nil {
		return fmt.Errorf("load active levels: %w", err)
	}
	stored, found, err := g.deps.LayoutStore.Get(ctx, g.hubID, day)
	if err != nil {
		return fmt.Errorf("load grid layout: %w", err)
	}
	blocks, err := g.deps.BlockStore.ListByDay(ctx, g.hubID, day)
	if err != nil {
		return fmt.Errorf("load rotation blocks: %w", err)
	}

	layout := stored.Layout.Reconcile(len(levels))
	if found && !stored.Layout.Order.IsPermutation(len(levels)) && len(stored.Layout.Order) > 0 {
		slog.Warn("grid_layout_stale", "hub_id", g.hubID, "day", day, "stored_columns", len(stored.Layout.Order), "levels", len(levels))
	}

	g.day = day
	g.apply(levels, blocks, layout)
	return nil
}

// apply installs day state and abandons any drag in progress.
func (g *RotationGrid) apply(levels []rotation.ActiveLevel, blocks []rotation.RotationBlock, layout rotation.Layout) {
	g.levels = levels
	g.blocks = blocks
	g.start, g.end, g.hasRange = rotation.TimeRange(levels)
	g.selector = rotation.NewSelector(g.start)
	g.setLayout(layout)
}

func (g *RotationGrid) setLayout(l rotation.Layout) {
	g.layout = l
	g.columns = rotation.BuildColumns(g.levels, l)
}

// scheduleSave queues the current layout under the current (hub, day) key.
// The key and layout are captured now, so a later day switch cannot
// redirect the write.
func (g *RotationGrid) scheduleSave() {
	hubID, day, layout := g.hubID, g.day, g.layout
	store, now := g.deps.LayoutStore, g.deps.Now
	g.deps.Saver.Schedule(LayoutKey(hubID, day), func(ctx context.Context) error {
		err := store.Save(ctx, rotation.GridLayout{HubID: hubID, Day: day, Layout: layout, UpdatedAt: now()})
		if err != nil {
			return fmt.Errorf("save grid layout %s: %w", LayoutKey(hubID, day), err)
		}
		slog.Info("grid_layout_saved", "hub_id", hubID, "day", day, "columns", len(layout.Order), "groups", len(layout.Groups))
		return nil
	})
}

// MoveColumn drags the rendered column at from onto the rendered column at to.
// Returns false when nothing changed.
func (g *RotationGrid) MoveColumn(from, to int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validColumn(from) || !g.validColumn(to) || from == to {
		return false
	}
	src, dst := g.columns[from], g.columns[to]
	target := dst.Display
	if to > from {
		target = dst.Display + len(dst.Originals) - 1
	}
	next := g.layout.Move(src.Display, target)
	if equalOrder(next.Order, g.layout.Order) {
		return false
	}
	g.setLayout(next)
	g.scheduleSave()
	return true
}

// CombineColumns merges the rendered column at col with the one to its right.
// Returns false when there is no right neighbour.
func (g *RotationGrid) CombineColumns(col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validColumn(col) || !g.validColumn(col+1) {
		return false
	}
	left := g.columns[col].Originals
	right := g.columns[col+1].Originals
	g.setLayout(g.layout.Combine(left[len(left)-1], right[0]))
	g.scheduleSave()
	return true
}

// SplitColumn separates a combined column between member after and after+1
// (member positions in display order). Returns false for an invalid split.
func (g *RotationGrid) SplitColumn(col, after int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validColumn(col) {
		return false
	}
	members := g.columns[col].Originals
	if after < 0 || after+1 >= len(members) {
		return false
	}
	g.setLayout(g.layout.Split(members[after], members[after+1]))
	g.scheduleSave()
	return true
}

// SelectEvent picks the template future drags create blocks from.
// An empty id clears the selection.
// PRE: a non-empty id names an event of this hub
func (g *RotationGrid) SelectEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		g.mu.Lock()
		g.event = nil
		g.mu.Unlock()
		return nil
	}
	ev, err := g.deps.EventStore.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.HubID != g.hubID {
		return ErrEventOtherHub
	}
	g.mu.Lock()
	g.event = &ev
	g.mu.Unlock()
	return nil
}

// PressCell starts a drag at row of the rendered column col.
func (g *RotationGrid) PressCell(col, row int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validColumn(col) {
		return false
	}
	return g.selector.Press(g.columns[col], row, g.event != nil)
}

// EnterCell extends the drag to row of the rendered column col.
func (g *RotationGrid) EnterCell(col, row int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validColumn(col) {
		return false
	}
	return g.selector.Enter(g.columns[col], row)
}

// Release ends the drag and creates a block for the selected interval.
// The drag is cleared whatever the outcome; a failed write is logged and
// returned without retry.
// POST: created is true when a block was persisted
func (g *RotationGrid) Release(ctx context.Context) (block rotation.RotationBlock, created bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	req, ok := g.selector.Release()
	if !ok || g.event == nil {
		return rotation.RotationBlock{}, false, nil
	}

	block = rotation.RotationBlock{
		ID:            g.deps.GenerateID(),
		HubID:         g.hubID,
		Day:           g.day,
		Level:         req.Level.Level,
		ScheduleGroup: req.Level.ScheduleGroup,
		EventID:       g.event.ID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Color:         g.event.Color,
		CreatedAt:     g.deps.Now(),
	}
	if err := block.Validate(); err != nil {
		slog.Error("rotation_block_create_failed", "hub_id", g.hubID, "day", g.day, "level", req.Level.String(), "error", err.Error())
		return rotation.RotationBlock{}, false, err
	}
	if err := g.deps.BlockStore.Create(ctx, block); err != nil {
		slog.Error("rotation_block_create_failed", "hub_id", g.hubID, "day", g.day, "level", req.Level.String(), "error", err.Error())
		return rotation.RotationBlock{}, false, err
	}
	slog.Info("rotation_grid_event", "event", "block_created", "hub_id", g.hubID, "day", g.day,
		"block_id", block.ID, "level", req.Level.String(), "start", block.StartTime.String(), "end", block.EndTime.String())
	g.refreshBlocks(ctx)
	return block, true, nil
}

// CancelDrag abandons any drag in progress.
func (g *RotationGrid) CancelDrag() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selector.Reset()
}

// DeleteBlock removes a block shown on the grid.
// PRE: id names a block of the current day
func (g *RotationGrid) DeleteBlock(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasBlock(id) {
		return ErrBlockNotOnGrid
	}
	if err := g.deps.BlockStore.Delete(ctx, id); err != nil {
		slog.Error("rotation_block_delete_failed", "hub_id", g.hubID, "block_id", id, "error", err.Error())
		return err
	}
	slog.Info("rotation_grid_event", "event", "block_deleted", "hub_id", g.hubID, "day", g.day, "block_id", id)
	g.refreshBlocks(ctx)
	return nil
}

// AssignCoach sets the coach of a block; nil or "" clears it.
// PRE: id names a block of the current day
func (g *RotationGrid) AssignCoach(ctx context.Context, id string, coachID *string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasBlock(id) {
		return ErrBlockNotOnGrid
	}
	if coachID != nil && *coachID == "" {
		coachID = nil
	}
	if err := g.deps.BlockStore.AssignCoach(ctx, id, coachID); err != nil {
		slog.Error("rotation_block_coach_failed", "hub_id", g.hubID, "block_id", id, "error", err.Error())
		return err
	}
	slog.Info("rotation_grid_event", "event", "coach_assigned", "hub_id", g.hubID, "block_id", id, "cleared", coachID == nil)
	g.refreshBlocks(ctx)
	return nil
}

// View returns a snapshot for rendering.
func (g *RotationGrid) View() RotationGridView {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := RotationGridView{
		HubID:      g.hubID,
		Day:        g.day,
		Levels:     append([]rotation.ActiveLevel(nil), g.levels...),
		Layout:     g.layout,
		Columns:    append([]rotation.Column(nil), g.columns...),
		RangeStart: g.start,
		RangeEnd:   g.end,
		Empty:      !g.hasRange,
		Blocks:     append([]rotation.RotationBlock(nil), g.blocks...),
	}
	if g.hasRange {
		v.Rows = rotation.RowLabels(g.start, g.end)
	}
	if g.event != nil {
		ev := *g.event
		v.SelectedEvent = &ev
	}
	if sel, ok := g.selector.Selecting(); ok {
		v.Selection = &sel
	}
	return v
}

// refreshBlocks re-reads the day's blocks after a successful write. A failed
// read keeps the previous list; the write itself already succeeded.
func (g *RotationGrid) refreshBlocks(ctx context.Context) {
	blocks, err := g.deps.BlockStore.ListByDay(ctx, g.hubID, g.day)
	if err != nil {
		slog.Warn("rotation_block_refresh_failed", "hub_id", g.hubID, "day", g.day, "error", err.Error())
		return
	}
	g.blocks = blocks
}

func (g *RotationGrid) validColumn(col int) bool {
	return col >= 0 && col < len(g.columns)
}

func (g *RotationGrid) hasBlock(id string) bool {
	for _, b := range g.blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}

func equalOrder(a, b rotation.ColumnOrder) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
