package projections

import (
	"bytes"
	"context"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"clubgrid/internal/application/orchestrators"
	"clubgrid/internal/domain/rotation"
)

// notesRenderer converts event notes to HTML. Raw HTML in the markdown is
// escaped because WithUnsafe is not set.
var notesRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderNotes converts markdown notes to safe HTML. Rendering errors fall
// back to the escaped source.
func RenderNotes(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := notesRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTMLEscapeString(md)
	}
	return buf.String()
}

// RotationGridEventStore lists the event templates offered in the palette.
type RotationGridEventStore interface {
	ListByHub(ctx context.Context, hubID string) ([]rotation.Event, error)
}

// GetRotationGridDeps holds dependencies for the projection.
type GetRotationGridDeps struct {
	EventStore RotationGridEventStore
}

// RotationGridResult is the JSON shape of the grid.
type RotationGridResult struct {
	HubID         string                `json:"hub_id"`
	Day           string                `json:"day"`
	Empty         bool                  `json:"empty"`
	RangeStart    string                `json:"range_start,omitempty"`
	RangeEnd      string                `json:"range_end,omitempty"`
	RowMinutes    int                   `json:"row_minutes"`
	Rows          []RotationGridRow     `json:"rows"`
	Columns       []RotationGridColumn  `json:"columns"`
	ColumnOrder   []int                 `json:"column_order"`
	Groups        [][]int               `json:"combined_groups"`
	Events        []RotationGridEvent   `json:"events"`
	SelectedEvent string                `json:"selected_event,omitempty"`
	Selection     *RotationGridDragSpan `json:"selection,omitempty"`
}

// RotationGridRow is one time-axis row.
type RotationGridRow struct {
	Row       int    `json:"row"`
	Time      string `json:"time"`
	OnTheHour bool   `json:"on_the_hour"`
}

// RotationGridColumn is one rendered column with the blocks it owns.
type RotationGridColumn struct {
	Index     int                      `json:"index"`
	Label     string                   `json:"label"`
	Combined  bool                     `json:"combined"`
	Levels    []rotation.LevelIdentity `json:"levels"`
	Primary   rotation.LevelIdentity   `json:"primary"`
	External  bool                     `json:"external"`
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	FirstRow  int                      `json:"first_row"`
	LastRow   int                      `json:"last_row"`
	Blocks    []RotationGridBlock      `json:"blocks"`
}

// RotationGridBlock is a block positioned on the row axis.
type RotationGridBlock struct {
	ID        string  `json:"id"`
	EventID   string  `json:"event_id"`
	EventName string  `json:"event_name,omitempty"`
	Color     string  `json:"color"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	StartRow  int     `json:"start_row"`
	RowSpan   int     `json:"row_span"`
	CoachID   *string `json:"coach_id"`
}

// RotationGridEvent is a palette entry with rendered notes.
type RotationGridEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NotesHTML string `json:"notes_html,omitempty"`
}

// RotationGridDragSpan is the drag in progress.
type RotationGridDragSpan struct {
	Level    rotation.LevelIdentity `json:"level"`
	StartRow int                    `json:"start_row"`
	EndRow   int                    `json:"end_row"`
}

// ExecuteGetRotationGrid shapes a grid snapshot for the client.
// PRE: view comes from RotationGrid.View
// POST: every block appears under the column whose primary level owns it;
// blocks of non-primary members of a combined column are not shown
func ExecuteGetRotationGrid(ctx context.Context, view orchestrators.RotationGridView, deps GetRotationGridDeps) (RotationGridResult, error) {
	res := RotationGridResult{
		HubID:       view.HubID,
		Day:         view.Day,
		Empty:       view.Empty,
		RowMinutes:  rotation.RowMinutes,
		Rows:        []RotationGridRow{},
		Columns:     []RotationGridColumn{},
		ColumnOrder: append([]int{}, view.Layout.Order...),
		Groups:      [][]int{},
		Events:      []RotationGridEvent{},
	}
	for _, g := range view.Layout.Groups {
		res.Groups = append(res.Groups, append([]int(nil), g...))
	}

	names := map[string]string{}
	if deps.EventStore != nil {
		events, err := deps.EventStore.ListByHub(ctx, view.HubID)
		if err != nil {
			return RotationGridResult{}, err
		}
		for _, ev := range events {
			names[ev.ID] = ev.Name
			res.Events = append(res.Events, RotationGridEvent{
				ID: ev.ID, Name: ev.Name, Color: ev.Color, NotesHTML: RenderNotes(ev.Notes),
			})
		}
	}
	if view.SelectedEvent != nil {
		res.SelectedEvent = view.SelectedEvent.ID
	}
	if view.Selection != nil {
		res.Selection = &RotationGridDragSpan{
			Level: view.Selection.Level, StartRow: view.Selection.StartRow, EndRow: view.Selection.EndRow,
		}
	}
	if view.Empty {
		return res, nil
	}

	res.RangeStart = view.RangeStart.String()
	res.RangeEnd = view.RangeEnd.String()
	for _, r := range view.Rows {
		res.Rows = append(res.Rows, RotationGridRow{Row: r.Row, Time: r.Time.String(), OnTheHour: r.OnTheHour})
	}

	for i, col := range view.Columns {
		c := RotationGridColumn{
			Index:     i,
			Label:     col.Label,
			Combined:  col.Combined(),
			Primary:   col.Primary(),
			StartTime: col.StartTime.String(),
			EndTime:   col.EndTime.String(),
			FirstRow:  rotation.RowForTime(col.StartTime, view.RangeStart),
			LastRow:   rotation.RowForTime(col.EndTime-1, view.RangeStart),
			Blocks:    []RotationGridBlock{},
		}
		for _, lvl := range col.Levels {
			c.Levels = append(c.Levels, lvl.Identity())
			c.External = c.External || lvl.IsExternalGroup
		}
		for _, b := range rotation.BlocksForColumn(col, view.Blocks) {
			startRow := rotation.RowForTime(b.StartTime, view.RangeStart)
			c.Blocks = append(c.Blocks, RotationGridBlock{
				ID:        b.ID,
				EventID:   b.EventID,
				EventName: names[b.EventID],
				Color:     b.Color,
				StartTime: b.StartTime.String(),
				EndTime:   b.EndTime.String(),
				StartRow:  startRow,
				RowSpan:   rotation.RowForTime(b.EndTime-1, view.RangeStart) - startRow + 1,
				CoachID:   b.CoachID,
			})
		}
		res.Columns = append(res.Columns, c)
	}
	return res, nil
}
