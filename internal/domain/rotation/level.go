package rotation

import (
	"errors"
	"strings"
)

// Day of week constants.
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Domain errors.
var (
	ErrInvalidDay     = errors.New("day must be a valid day of the week")
	ErrEmptyHubID     = errors.New("hub ID cannot be empty")
	ErrEmptyLevel     = errors.New("level cannot be empty")
	ErrInvalidWindow  = errors.New("end time must be after start time")
	ErrEmptyEventID   = errors.New("event ID cannot be empty")
	ErrInvalidColor   = errors.New("color must be a #RRGGBB hex value")
	ErrEmptyEventName = errors.New("event name cannot be empty")
)

// IsValidDay reports whether day is one of ValidDays.
func IsValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}

// LevelIdentity identifies a schedulable group on a day.
type LevelIdentity struct {
	Level         string `json:"level"`
	ScheduleGroup string `json:"schedule_group"`
}

// String renders the identity as "level" or "level (group)".
func (id LevelIdentity) String() string {
	if id.ScheduleGroup == "" {
		return id.Level
	}
	return id.Level + " (" + id.ScheduleGroup + ")"
}

// ActiveLevel is one schedulable group for a given day.
// INVARIANT: StartTime < EndTime
type ActiveLevel struct {
	Level           string
	ScheduleGroup   string
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	IsExternalGroup bool
}

// Identity returns the (level, schedule group) pair.
func (l ActiveLevel) Identity() LevelIdentity {
	return LevelIdentity{Level: l.Level, ScheduleGroup: l.ScheduleGroup}
}

// IsActiveAt reports whether slot falls in [StartTime, EndTime).
func (l ActiveLevel) IsActiveAt(slot TimeOfDay) bool {
	return slot >= l.StartTime && slot < l.EndTime
}

// Validate checks the level's invariants.
func (l ActiveLevel) Validate() error {
	if strings.TrimSpace(l.Level) == "" {
		return ErrEmptyLevel
	}
	if l.EndTime <= l.StartTime {
		return ErrInvalidWindow
	}
	return nil
}
