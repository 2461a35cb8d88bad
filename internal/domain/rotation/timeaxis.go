package rotation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RowMinutes is the granularity of one grid row.
const RowMinutes = 5

// ErrInvalidTime is returned when a time-of-day string cannot be parsed.
var ErrInvalidTime = errors.New("time must be in HH:MM format")

// TimeOfDay is a wall-clock time expressed as minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" (seconds are dropped).
// PRE: s is a 24-hour clock time
// POST: Returns minutes after midnight, or ErrInvalidTime
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalText encodes the time as HH:MM, so JSON carries "09:30".
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the formats ParseTimeOfDay accepts.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// OnTheHour reports whether the time falls exactly on an hour boundary.
func (t TimeOfDay) OnTheHour() bool {
	return int(t)%60 == 0
}

// TimeRange returns the earliest start and the latest end across levels.
// ok is false when levels is empty.
func TimeRange(levels []ActiveLevel) (start, end TimeOfDay, ok bool) {
	if len(levels) == 0 {
		return 0, 0, false
	}
	start, end = levels[0].StartTime, levels[0].EndTime
	for _, l := range levels[1:] {
		if l.StartTime < start {
			start = l.StartTime
		}
		if l.EndTime > end {
			end = l.EndTime
		}
	}
	return start, end, true
}

// RowForTime returns the row index holding t in a grid starting at rangeStart.
// INVARIANT: RowForTime(rangeStart, rangeStart) == 0
func RowForTime(t, rangeStart TimeOfDay) int {
	return floorDiv(int(t-rangeStart), RowMinutes)
}

// TimeForRow is the inverse of RowForTime.
func TimeForRow(row int, rangeStart TimeOfDay) TimeOfDay {
	return rangeStart + TimeOfDay(row*RowMinutes)
}

// RowCount returns how many rows are needed to cover [start, end).
func RowCount(start, end TimeOfDay) int {
	if end <= start {
		return 0
	}
	return RowForTime(end-1, start) + 1
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
