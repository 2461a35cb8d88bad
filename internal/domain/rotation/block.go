package rotation

import (
	"regexp"
	"strings"
	"time"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// RotationBlock is a scheduled event occupying [StartTime, EndTime) on the
// primary level of a column.
type RotationBlock struct {
	ID            string
	HubID         string
	Day           string
	Level         string
	ScheduleGroup string
	EventID       string
	StartTime     TimeOfDay
	EndTime       TimeOfDay
	Color         string
	CoachID       *string
	CreatedAt     time.Time
}

// Identity returns the level identity the block belongs to.
func (b RotationBlock) Identity() LevelIdentity {
	return LevelIdentity{Level: b.Level, ScheduleGroup: b.ScheduleGroup}
}

// Validate checks the block's invariants.
// PRE: block is populated
// POST: Returns nil if valid, the first violation otherwise
func (b RotationBlock) Validate() error {
	if strings.TrimSpace(b.HubID) == "" {
		return ErrEmptyHubID
	}
	if !IsValidDay(b.Day) {
		return ErrInvalidDay
	}
	if strings.TrimSpace(b.Level) == "" {
		return ErrEmptyLevel
	}
	if b.EventID == "" {
		return ErrEmptyEventID
	}
	if b.EndTime <= b.StartTime {
		return ErrInvalidWindow
	}
	if !hexColor.MatchString(b.Color) {
		return ErrInvalidColor
	}
	return nil
}

// BlockRequest is emitted by the selector when a drag is released.
type BlockRequest struct {
	Level     LevelIdentity
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Event is a template a drag creates blocks from.
type Event struct {
	ID    string
	HubID string
	Name  string
	Color string
	Notes string // markdown
}

// Validate checks the event's invariants.
func (e Event) Validate() error {
	if strings.TrimSpace(e.HubID) == "" {
		return ErrEmptyHubID
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyEventName
	}
	if !hexColor.MatchString(e.Color) {
		return ErrInvalidColor
	}
	return nil
}

// GridLayout is the persisted layout for one hub and day.
type GridLayout struct {
	HubID     string
	Day       string
	Layout    Layout
	UpdatedAt time.Time
}
