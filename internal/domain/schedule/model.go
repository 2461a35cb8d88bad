package schedule

import (
	"errors"
	"sort"
	"strings"

	"clubgrid/internal/domain/rotation"
)

// Domain errors
var (
	ErrEmptyID = errors.New("practice schedule ID cannot be empty")
)

// PracticeSchedule is a recurring weekly practice slot for one level at a hub.
// Active levels for a grid day are derived from these records.
type PracticeSchedule struct {
	ID              string
	HubID           string
	Level           string
	ScheduleGroup   string
	Day             string // monday, tuesday, etc.
	StartTime       rotation.TimeOfDay
	EndTime         rotation.TimeOfDay
	IsExternalGroup bool
}

// Validate checks if the PracticeSchedule has valid data.
// PRE: PracticeSchedule struct is populated
// POST: Returns nil if valid, error otherwise
func (p *PracticeSchedule) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.HubID) == "" {
		return rotation.ErrEmptyHubID
	}
	if !rotation.IsValidDay(p.Day) {
		return rotation.ErrInvalidDay
	}
	if strings.TrimSpace(p.Level) == "" {
		return rotation.ErrEmptyLevel
	}
	if p.EndTime <= p.StartTime {
		return rotation.ErrInvalidWindow
	}
	return nil
}

// ActiveLevels folds one day's records into the grid's natural column order.
// Records sharing a (level, schedule group) identity collapse into one level
// spanning their union. The result is sorted by start time, then level, then
// schedule group, so the natural order is stable across reloads.
// PRE: records belong to a single hub and day
// POST: Returns one ActiveLevel per distinct identity
func ActiveLevels(records []PracticeSchedule) []rotation.ActiveLevel {
	index := make(map[rotation.LevelIdentity]int)
	var levels []rotation.ActiveLevel
	for _, r := range records {
		id := rotation.LevelIdentity{Level: r.Level, ScheduleGroup: r.ScheduleGroup}
		if i, ok := index[id]; ok {
			if r.StartTime < levels[i].StartTime {
				levels[i].StartTime = r.StartTime
			}
			if r.EndTime > levels[i].EndTime {
				levels[i].EndTime = r.EndTime
			}
			levels[i].IsExternalGroup = levels[i].IsExternalGroup || r.IsExternalGroup
			continue
		}
		index[id] = len(levels)
		levels = append(levels, rotation.ActiveLevel{
			Level:           r.Level,
			ScheduleGroup:   r.ScheduleGroup,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			IsExternalGroup: r.IsExternalGroup,
		})
	}
	sort.SliceStable(levels, func(i, j int) bool {
		a, b := levels[i], levels[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.ScheduleGroup < b.ScheduleGroup
	})
	return levels
}
