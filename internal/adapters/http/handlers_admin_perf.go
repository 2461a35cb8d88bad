package web

import (
	"net/http"
	"strconv"
	"time"
)

// handleAdminPerf returns a perf snapshot (GET /api/admin/perf?minutes=&top=).
// minutes defaults to 15 and top to 10.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	minutes := 15
	if n, err := strconv.Atoi(q.Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	top := 10
	if n, err := strconv.Atoi(q.Get("top")); err == nil && n > 0 && n <= 100 {
		top = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}
