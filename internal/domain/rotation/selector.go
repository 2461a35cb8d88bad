package rotation

// Selection is the in-progress drag: a locked level and a row extent.
type Selection struct {
	Level    LevelIdentity
	StartRow int
	EndRow   int
}

// Selector turns press/enter/release over grid cells into a BlockRequest.
// States: Idle (no selection) and Selecting.
type Selector struct {
	rangeStart TimeOfDay
	active     *Selection
}

// NewSelector creates an idle selector for a grid starting at rangeStart.
func NewSelector(rangeStart TimeOfDay) *Selector {
	return &Selector{rangeStart: rangeStart}
}

// Selecting returns the current selection, if any.
func (s *Selector) Selecting() (Selection, bool) {
	if s.active == nil {
		return Selection{}, false
	}
	return *s.active, true
}

// Press starts a selection on col at row.
// Ignored without a selected event or when the row is outside the column's window.
func (s *Selector) Press(col Column, row int, hasEvent bool) bool {
	if !hasEvent || len(col.Levels) == 0 || !col.IsActiveAt(TimeForRow(row, s.rangeStart)) {
		return false
	}
	s.active = &Selection{Level: col.Primary(), StartRow: row, EndRow: row}
	return true
}

// Enter extends the selection to row when col is the locked column and the
// row is active. Anything else leaves the last valid extent in place.
func (s *Selector) Enter(col Column, row int) bool {
	if s.active == nil || len(col.Levels) == 0 {
		return false
	}
	if col.Primary() != s.active.Level || !col.IsActiveAt(TimeForRow(row, s.rangeStart)) {
		return false
	}
	s.active.EndRow = row
	return true
}

// Release ends the drag and returns the selected interval as [start, end).
// The selector is Idle afterwards whatever the caller does with the request.
func (s *Selector) Release() (BlockRequest, bool) {
	if s.active == nil {
		return BlockRequest{}, false
	}
	sel := *s.active
	s.active = nil

	lo, hi := sel.StartRow, sel.EndRow
	if lo > hi {
		lo, hi = hi, lo
	}
	return BlockRequest{
		Level:     sel.Level,
		StartTime: TimeForRow(lo, s.rangeStart),
		EndTime:   TimeForRow(hi+1, s.rangeStart),
	}, true
}

// Reset abandons any drag in progress.
func (s *Selector) Reset() {
	s.active = nil
}
