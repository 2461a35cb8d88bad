package web

import (
	"context"
	"net/http"
	"strings"

	"clubgrid/internal/application/orchestrators"
	"clubgrid/internal/application/projections"
	"clubgrid/internal/domain/rotation"
)

// writeGrid responds with the grid projection.
func writeGrid(ctx context.Context, w http.ResponseWriter, g *orchestrators.RotationGrid, status int) {
	res, err := projections.ExecuteGetRotationGrid(ctx, g.View(), projections.GetRotationGridDeps{
		EventStore: stores.RotationEvents,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, status, res)
}

// openGrid looks up the hub's open grid and writes 409 when there is none.
func openGrid(w http.ResponseWriter, hubID string) (*orchestrators.RotationGrid, bool) {
	if strings.TrimSpace(hubID) == "" {
		http.Error(w, rotation.ErrEmptyHubID.Error(), http.StatusBadRequest)
		return nil, false
	}
	g, ok := grids.get(hubID)
	if !ok {
		http.Error(w, "rotation grid is not open for this hub", http.StatusConflict)
		return nil, false
	}
	return g, true
}

// handleRotationGrid opens a hub's grid on a day (GET /api/rotation-grid?hub=&day=).
// Requesting another day switches the open grid to it.
// POST: Returns the grid projection; 400 for a missing hub or bad day
func handleRotationGrid(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	hubID := q.Get("hub")
	day := strings.ToLower(q.Get("day"))
	if day == "" {
		day = strings.ToLower(timeNow().Weekday().String())
	}
	g, err := grids.open(r.Context(), hubID, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleMoveColumn drags one rendered column onto another.
func handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub  string `json:"Hub"`
		From int    `json:"From"`
		To   int    `json:"To"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}
	g.MoveColumn(input.From, input.To)
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleCombineColumns merges a rendered column with its right neighbour.
func handleCombineColumns(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub    string `json:"Hub"`
		Column int    `json:"Column"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}
	if !g.CombineColumns(input.Column) {
		http.Error(w, "column has no right neighbour", http.StatusBadRequest)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleSplitColumn separates a combined column after member After.
func handleSplitColumn(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub    string `json:"Hub"`
		Column int    `json:"Column"`
		After  int    `json:"After"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}
	if !g.SplitColumn(input.Column, input.After) {
		http.Error(w, "column cannot be split there", http.StatusBadRequest)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleDrag feeds pointer gestures to the block selector.
// Action is press, enter, release or cancel. A release that completes a
// selection creates a block and answers 201.
func handleDrag(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub    string `json:"Hub"`
		Action string `json:"Action"`
		Column int    `json:"Column"`
		Row    int    `json:"Row"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}

	ctx := r.Context()
	switch input.Action {
	case "press":
		g.PressCell(input.Column, input.Row)
	case "enter":
		g.EnterCell(input.Column, input.Row)
	case "release":
		_, created, err := g.Release(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		if created {
			writeGrid(ctx, w, g, http.StatusCreated)
			return
		}
	case "cancel":
		g.CancelDrag()
	default:
		http.Error(w, "action must be press, enter, release or cancel", http.StatusBadRequest)
		return
	}
	writeGrid(ctx, w, g, http.StatusOK)
}

// handleSelectEvent picks the event template drags create blocks from.
func handleSelectEvent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub     string `json:"Hub"`
		EventID string `json:"EventID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}
	if err := g.SelectEvent(r.Context(), input.EventID); err != nil {
		writeError(w, err)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleGridBlocks deletes a block from the open day (DELETE ?hub=&id=).
func handleGridBlocks(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	q := r.URL.Query()
	g, ok := openGrid(w, q.Get("hub"))
	if !ok {
		return
	}
	id := q.Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := g.DeleteBlock(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}

// handleAssignCoach sets or clears a block's coach. A null or empty
// CoachID clears it.
func handleAssignCoach(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Hub     string  `json:"Hub"`
		BlockID string  `json:"BlockID"`
		CoachID *string `json:"CoachID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	g, ok := openGrid(w, input.Hub)
	if !ok {
		return
	}
	if input.BlockID == "" {
		http.Error(w, "BlockID is required", http.StatusBadRequest)
		return
	}
	if err := g.AssignCoach(r.Context(), input.BlockID, input.CoachID); err != nil {
		writeError(w, err)
		return
	}
	writeGrid(r.Context(), w, g, http.StatusOK)
}
