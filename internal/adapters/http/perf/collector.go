package perf

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the ring capacity used when NewCollector gets a non-positive size.
const DefaultRingSize = 10000

// EntryKind says what an Entry timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // one HTTP request, Path is the mux pattern
	KindQuery                    // one database call, Path is "Query <table>" or "Exec <table>"
	KindView                     // one list view recompute, Path is the view name
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string
	StatusCode int // requests only
	Rows       int // views only: rows fetched before filtering
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent entries in a fixed ring.
// Record never allocates; all aggregation is done by Snapshot.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written atomic.Int64
}

// NewCollector returns a collector holding the last size entries.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry once the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.written.Add(1)
}

// RecordView stores the timing of one list view recompute.
func (c *Collector) RecordView(view string, rows int, d time.Duration, at time.Time) {
	c.Record(Entry{
		Kind:       KindView,
		Path:       view,
		Rows:       rows,
		DurationMs: float64(d.Microseconds()) / 1000,
		Timestamp:  at,
	})
}

// TotalRecorded counts every entry ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	return c.written.Load()
}

// Snapshot is the /api/admin/perf payload.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRequests  int64      `json:"total_requests"`
	ServerErrors   int        `json:"server_errors"`
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
	SlowestViews   []PathStat `json:"slowest_views"`
}

// PathStat aggregates the entries sharing one Path.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors,omitempty"`
	MaxRows int     `json:"max_rows,omitempty"`
	TotalMs float64 `json:"total_ms"`
}

type bucket map[string]*PathStat

func (b bucket) add(e Entry) *PathStat {
	s, ok := b[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		b[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = max(s.MaxMs, e.DurationMs)
	s.MaxRows = max(s.MaxRows, e.Rows)
	return s
}

// top returns the n slowest paths by average, ties ordered by path.
func (b bucket) top(n int) []PathStat {
	list := make([]PathStat, 0, len(b))
	for _, s := range b {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	slices.SortFunc(list, func(x, y PathStat) int {
		if c := cmp.Compare(y.AvgMs, x.AvgMs); c != 0 {
			return c
		}
		return strings.Compare(x.Path, y.Path)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// Snapshot aggregates the entries recorded at or after since.
// Each Slowest list holds at most topN paths.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	entries := slices.Clone(c.ring)
	c.mu.Unlock()

	byKind := map[EntryKind]bucket{KindRequest: {}, KindQuery: {}, KindView: {}}
	var durations []float64
	snap := Snapshot{Since: since, TotalRequests: c.TotalRecorded()}

	for _, e := range entries {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		b, ok := byKind[e.Kind]
		if !ok {
			continue
		}
		s := b.add(e)
		if e.Kind != KindRequest {
			continue
		}
		durations = append(durations, e.DurationMs)
		if e.StatusCode >= 500 {
			s.Errors++
			snap.ServerErrors++
		}
	}

	snap.SlowestPaths = byKind[KindRequest].top(topN)
	snap.SlowestQueries = byKind[KindQuery].top(topN)
	snap.SlowestViews = byKind[KindView].top(topN)

	if len(durations) > 0 {
		slices.Sort(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates linearly between the two closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
