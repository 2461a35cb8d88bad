package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubgrid/internal/adapters/http/middleware"
	"clubgrid/internal/adapters/http/perf"
	gridLayoutStore "clubgrid/internal/adapters/storage/gridlayout"
	practiceScheduleStore "clubgrid/internal/adapters/storage/practiceschedule"
	rotationBlockStore "clubgrid/internal/adapters/storage/rotationblock"
	rotationEventStore "clubgrid/internal/adapters/storage/rotationevent"
	"clubgrid/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	PracticeSchedules practiceScheduleStore.Store
	RotationEvents    rotationEventStore.Store
	RotationBlocks    rotationBlockStore.Store
	GridLayouts       gridLayoutStore.Store
}

// Options configures NewMux.
type Options struct {
	Collector          *perf.Collector // may be nil
	Saver              orchestrators.LayoutSaveScheduler
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	SlowRequest        time.Duration
	RateLimitPerSecond int
}

// DefaultRateLimitPerSecond is the per-client limit when Options leaves it zero.
const DefaultRateLimitPerSecond = 20

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global grid registry (set by NewMux)
var grids *gridRegistry

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// gridRegistry keeps one open rotation grid per hub.
type gridRegistry struct {
	mu    sync.Mutex
	grids map[string]*orchestrators.RotationGrid
	deps  orchestrators.RotationGridDeps
}

func newGridRegistry(s *Stores, saver orchestrators.LayoutSaveScheduler) *gridRegistry {
	return &gridRegistry{
		grids: make(map[string]*orchestrators.RotationGrid),
		deps: orchestrators.RotationGridDeps{
			LevelStore:  s.PracticeSchedules,
			LayoutStore: s.GridLayouts,
			BlockStore:  s.RotationBlocks,
			EventStore:  s.RotationEvents,
			Saver:       saver,
			GenerateID:  generateID,
			Now:         func() time.Time { return timeNow() },
		},
	}
}

// open returns the hub's grid showing day, opening it or switching its day
// as needed. Asking for the day already shown returns the grid as is.
func (r *gridRegistry) open(ctx context.Context, hubID, day string) (*orchestrators.RotationGrid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.grids[hubID]; ok {
		if g.Day() != day {
			if err := g.SwitchDay(ctx, day); err != nil {
				return nil, err
			}
		}
		return g, nil
	}
	g, err := orchestrators.OpenRotationGrid(ctx, r.deps, hubID, day)
	if err != nil {
		return nil, err
	}
	r.grids[hubID] = g
	return g, nil
}

// get returns an already open grid.
func (r *gridRegistry) get(hubID string) (*orchestrators.RotationGrid, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grids[hubID]
	return g, ok
}

// reloadDay refreshes an open grid of hubID when it is showing day, so edits
// to practice schedules show up without reopening.
func (r *gridRegistry) reloadDay(ctx context.Context, hubID, day string) error {
	g, ok := r.get(hubID)
	if !ok || g.Day() != day {
		return nil
	}
	return g.Reload(ctx)
}

// NewMux wires HTTP handlers for the app. The returned stop function ends
// background work owned by the handler chain.
// PRE: s has every store set; opts.Saver is non-nil; len(opts.CSRFKey) == 32
func NewMux(s *Stores, opts Options) (http.Handler, func()) {
	stores = s
	perfCollector = opts.Collector
	grids = newGridRegistry(s, opts.Saver)

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = DefaultRateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Outermost first at request time: Recover -> Timing -> RateLimit -> CSRF -> SecurityHeaders -> mux
	h := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.SecureCookies,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
		middleware.Recover,
	)
	return h, limiter.Stop
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealthz)

	mux.HandleFunc("/api/rotation-grid", handleRotationGrid)
	mux.HandleFunc("/api/rotation-grid/columns/move", handleMoveColumn)
	mux.HandleFunc("/api/rotation-grid/columns/combine", handleCombineColumns)
	mux.HandleFunc("/api/rotation-grid/columns/split", handleSplitColumn)
	mux.HandleFunc("/api/rotation-grid/drag", handleDrag)
	mux.HandleFunc("/api/rotation-grid/event", handleSelectEvent)
	mux.HandleFunc("/api/rotation-grid/blocks", handleGridBlocks)
	mux.HandleFunc("/api/rotation-grid/blocks/coach", handleAssignCoach)

	mux.HandleFunc("/api/rotation-events", handleRotationEvents)
	mux.HandleFunc("/api/practice-schedules", handlePracticeSchedules)

	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}
