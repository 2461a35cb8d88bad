package rotation

import "strings"

// Column is one rendered grid column: a single level or a combined group.
type Column struct {
	Display   int   // display index of the first member
	Originals []int // members in display order
	Levels    []ActiveLevel
	Label     string
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Primary is the level identity that owns the column's blocks.
func (c Column) Primary() LevelIdentity {
	return c.Levels[0].Identity()
}

// Combined reports whether the column merges several levels.
func (c Column) Combined() bool {
	return len(c.Levels) > 1
}

// IsActiveAt reports whether slot falls in the column's [StartTime, EndTime).
func (c Column) IsActiveAt(slot TimeOfDay) bool {
	return slot >= c.StartTime && slot < c.EndTime
}

// BuildColumns turns levels and a reconciled layout into display columns.
// A combined group renders once, at the position of its first member.
func BuildColumns(levels []ActiveLevel, layout Layout) []Column {
	layout = layout.Reconcile(len(levels))
	emitted := make(map[int]bool)
	var cols []Column
	for d, orig := range layout.Order {
		gi := layout.GroupOf(orig)
		if gi == -1 {
			lvl := levels[orig]
			cols = append(cols, Column{
				Display:   d,
				Originals: []int{orig},
				Levels:    []ActiveLevel{lvl},
				Label:     lvl.Level,
				StartTime: lvl.StartTime,
				EndTime:   lvl.EndTime,
			})
			continue
		}
		if emitted[gi] {
			continue
		}
		emitted[gi] = true

		members := layout.MembersByDisplay(gi)
		col := Column{Display: d, Originals: members}
		names := make([]string, 0, len(members))
		for i, m := range members {
			lvl := levels[m]
			col.Levels = append(col.Levels, lvl)
			names = append(names, lvl.Level)
			if i == 0 || lvl.StartTime < col.StartTime {
				col.StartTime = lvl.StartTime
			}
			if i == 0 || lvl.EndTime > col.EndTime {
				col.EndTime = lvl.EndTime
			}
		}
		col.Label = strings.Join(names, "/")
		cols = append(cols, col)
	}
	return cols
}

// BlocksForColumn returns the blocks owned by the column's primary level.
func BlocksForColumn(col Column, blocks []RotationBlock) []RotationBlock {
	primary := col.Primary()
	var out []RotationBlock
	for _, b := range blocks {
		if b.Identity() == primary {
			out = append(out, b)
		}
	}
	return out
}

// RowLabel is one row of the time axis.
type RowLabel struct {
	Row       int
	Time      TimeOfDay
	OnTheHour bool
}

// RowLabels lists every row between start and end.
func RowLabels(start, end TimeOfDay) []RowLabel {
	n := RowCount(start, end)
	out := make([]RowLabel, n)
	for r := 0; r < n; r++ {
		t := TimeForRow(r, start)
		out[r] = RowLabel{Row: r, Time: t, OnTheHour: t.OnTheHour()}
	}
	return out
}
