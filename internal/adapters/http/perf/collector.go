// Package perf keeps a bounded in-memory record of request, query and
// layout-save timings for the admin perf endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindSave
)

// String names the kind for JSON output.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindQuery:
		return "query"
	case KindSave:
		return "save"
	}
	return "unknown"
}

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path", "VERB table" or a layout key
	StatusCode int    // HTTP status; 0 for queries; 1 marks a failed save
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries. When full the
// oldest entries are overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given capacity.
// PRE: size > 0 (anything else uses DefaultRingSize)
// POST: Returns an empty collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry, overwriting the oldest when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// KindStats summarizes one entry kind.
type KindStats struct {
	Count   int        `json:"count"`
	Errors  int        `json:"errors"`
	P50Ms   float64    `json:"p50_ms"`
	P95Ms   float64    `json:"p95_ms"`
	P99Ms   float64    `json:"p99_ms"`
	Slowest []PathStat `json:"slowest"`
}

// PathStat aggregates timing for one path, statement or key.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot holds aggregated data computed on read.
type Snapshot struct {
	TotalRecorded int64     `json:"total_recorded"`
	Since         time.Time `json:"since"`
	Requests      KindStats `json:"requests"`
	Queries       KindStats `json:"queries"`
	Saves         KindStats `json:"saves"`
}

type accumulator struct {
	durations []float64
	errors    int
	paths     map[string]*PathStat
}

func (a *accumulator) add(e Entry) {
	a.durations = append(a.durations, e.DurationMs)
	if isError(e) {
		a.errors++
	}
	if a.paths == nil {
		a.paths = make(map[string]*PathStat)
	}
	s, ok := a.paths[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		a.paths[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

func (a *accumulator) stats(topN int) KindStats {
	ks := KindStats{Count: len(a.durations), Errors: a.errors, Slowest: []PathStat{}}
	if len(a.durations) == 0 {
		return ks
	}
	sort.Float64s(a.durations)
	ks.P50Ms = percentile(a.durations, 50)
	ks.P95Ms = percentile(a.durations, 95)
	ks.P99Ms = percentile(a.durations, 99)
	for _, s := range a.paths {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	ks.Slowest = topByAvg(a.paths, topN)
	return ks
}

func isError(e Entry) bool {
	switch e.Kind {
	case KindRequest:
		return e.StatusCode >= 500
	case KindSave:
		return e.StatusCode != 0
	}
	return false
}

// Snapshot aggregates entries recorded at or after since.
// It copies the buffer under the lock and sorts outside it.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var acc [3]accumulator
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) || int(e.Kind) >= len(acc) {
			continue
		}
		acc[e.Kind].add(e)
	}
	return Snapshot{
		TotalRecorded: c.TotalRecorded(),
		Since:         since,
		Requests:      acc[KindRequest].stats(topN),
		Queries:       acc[KindQuery].stats(topN),
		Saves:         acc[KindSave].stats(topN),
	}
}

// percentile returns the p-th percentile of a sorted slice by linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest paths by average duration.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
