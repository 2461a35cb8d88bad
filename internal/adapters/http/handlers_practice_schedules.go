package web

import (
	"log/slog"
	"net/http"
	"strings"

	"clubgrid/internal/application/listutil"
	"clubgrid/internal/domain/rotation"
	scheduleDomain "clubgrid/internal/domain/schedule"
)

var practiceSorts = map[string]func(a, b scheduleDomain.PracticeSchedule) bool{
	"level":      func(a, b scheduleDomain.PracticeSchedule) bool { return a.Level < b.Level },
	"start_time": func(a, b scheduleDomain.PracticeSchedule) bool { return a.StartTime < b.StartTime },
	"day":        func(a, b scheduleDomain.PracticeSchedule) bool { return dayIndex(a.Day) < dayIndex(b.Day) },
}

func dayIndex(day string) int {
	for i, d := range rotation.ValidDays {
		if d == day {
			return i
		}
	}
	return len(rotation.ValidDays)
}

// handlePracticeSchedules handles GET/POST/DELETE for /api/practice-schedules.
// Changes to a day that an open grid is showing reload that grid.
func handlePracticeSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		hubID := q.Get("hub")
		if hubID == "" {
			http.Error(w, "hub is required", http.StatusBadRequest)
			return
		}
		var (
			records []scheduleDomain.PracticeSchedule
			err     error
		)
		if day := strings.ToLower(q.Get("day")); day != "" {
			if !rotation.IsValidDay(day) {
				http.Error(w, rotation.ErrInvalidDay.Error(), http.StatusBadRequest)
				return
			}
			records, err = stores.PracticeSchedules.ListByDay(ctx, hubID, day)
		} else {
			records, err = stores.PracticeSchedules.ListByHub(ctx, hubID)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		p := listutil.ParseParams(q, []string{"level", "start_time", "day"})
		writeJSON(w, http.StatusOK, listutil.Paginate(records, p, practiceSorts, func(s scheduleDomain.PracticeSchedule) bool {
			return p.Matches(s.Level, s.ScheduleGroup)
		}))

	case http.MethodPost:
		var input struct {
			ID              string             `json:"ID"`
			HubID           string             `json:"HubID"`
			Level           string             `json:"Level"`
			ScheduleGroup   string             `json:"ScheduleGroup"`
			Day             string             `json:"Day"`
			StartTime       rotation.TimeOfDay `json:"StartTime"`
			EndTime         rotation.TimeOfDay `json:"EndTime"`
			IsExternalGroup bool               `json:"IsExternalGroup"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		status := http.StatusOK
		var previousDay string
		if input.ID == "" {
			input.ID = generateID()
			status = http.StatusCreated
		} else {
			existing, err := stores.PracticeSchedules.GetByID(ctx, input.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			if existing.HubID != input.HubID {
				http.Error(w, "practice schedule belongs to another hub", http.StatusBadRequest)
				return
			}
			previousDay = existing.Day
		}
		rec := scheduleDomain.PracticeSchedule{
			ID:              input.ID,
			HubID:           input.HubID,
			Level:           strings.TrimSpace(input.Level),
			ScheduleGroup:   strings.TrimSpace(input.ScheduleGroup),
			Day:             strings.ToLower(input.Day),
			StartTime:       input.StartTime,
			EndTime:         input.EndTime,
			IsExternalGroup: input.IsExternalGroup,
		}
		if err := rec.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.PracticeSchedules.Save(ctx, rec); err != nil {
			internalError(w, err)
			return
		}
		reloadGridDays(r, rec.HubID, rec.Day, previousDay)
		writeJSON(w, status, rec)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		existing, err := stores.PracticeSchedules.GetByID(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := stores.PracticeSchedules.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		reloadGridDays(r, existing.HubID, existing.Day)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// reloadGridDays refreshes an open grid showing any of days. The write has
// already succeeded, so a failed reload is only logged.
func reloadGridDays(r *http.Request, hubID string, days ...string) {
	for _, day := range days {
		if day == "" {
			continue
		}
		if err := grids.reloadDay(r.Context(), hubID, day); err != nil {
			slog.Warn("rotation_grid_reload_failed", "hub_id", hubID, "day", day, "error", err.Error())
		}
	}
}
