package web

import (
	"net/http"
	"strings"

	"clubgrid/internal/application/listutil"
	"clubgrid/internal/domain/rotation"
)

var eventSorts = map[string]func(a, b rotation.Event) bool{
	"name":  func(a, b rotation.Event) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"color": func(a, b rotation.Event) bool { return a.Color < b.Color },
}

// handleRotationEvents handles GET/POST/DELETE for /api/rotation-events.
// GET ?hub= lists a page of the hub's event templates (q searches name and notes).
// POST creates an event, or updates it when ID names an existing one.
// DELETE ?id= removes an event no block uses.
func handleRotationEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		hubID := r.URL.Query().Get("hub")
		if hubID == "" {
			http.Error(w, "hub is required", http.StatusBadRequest)
			return
		}
		events, err := stores.RotationEvents.ListByHub(ctx, hubID)
		if err != nil {
			internalError(w, err)
			return
		}
		p := listutil.ParseParams(r.URL.Query(), []string{"name", "color"})
		writeJSON(w, http.StatusOK, listutil.Paginate(events, p, eventSorts, func(e rotation.Event) bool {
			return p.Matches(e.Name, e.Notes)
		}))

	case http.MethodPost:
		var input struct {
			ID    string `json:"ID"`
			HubID string `json:"HubID"`
			Name  string `json:"Name"`
			Color string `json:"Color"`
			Notes string `json:"Notes"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		status := http.StatusOK
		if input.ID == "" {
			input.ID = generateID()
			status = http.StatusCreated
		} else {
			existing, err := stores.RotationEvents.GetByID(ctx, input.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			if existing.HubID != input.HubID {
				http.Error(w, "event belongs to another hub", http.StatusBadRequest)
				return
			}
		}
		ev := rotation.Event{
			ID:    input.ID,
			HubID: input.HubID,
			Name:  strings.TrimSpace(input.Name),
			Color: strings.ToLower(input.Color),
			Notes: input.Notes,
		}
		if err := ev.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.RotationEvents.Save(ctx, ev); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, ev)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if _, err := stores.RotationEvents.GetByID(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		if err := stores.RotationEvents.Delete(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}
