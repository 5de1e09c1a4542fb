package alloc

import (
	"sync/atomic"

	"github.com/flier/threadcache/internal/xsync"
)

// Stats holds live allocator activity counters; see [Snapshot] for a
// point-in-time copy. It is diagnostic
// only: nothing in this package's correctness depends on it, and collecting
// it never takes the global slab's mutex longer than the operation it rides
// alongside already needed it for.
//
// This is supplemental to spec.md, which specifies no observability
// surface; it is in scope because spec.md's non-goals exclude
// "debugging/poison patterns", not plain counters.
type Stats struct {
	allocs    atomic.Int64
	frees     atomic.Int64
	refills   atomic.Int64
	overflows atomic.Int64
}

// Snapshot is a point-in-time copy of [Stats], safe to read without racing
// the counters it was taken from.
type Snapshot struct {
	Allocs, Frees     int64
	Refills, Overflow int64
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		Allocs:   s.allocs.Load(),
		Frees:    s.frees.Load(),
		Refills:  s.refills.Load(),
		Overflow: s.overflows.Load(),
	}
}

// hitRate is a gauge over [0, 1] of how often a thread cache's fast path
// serves an allocation without touching the global slab. It is updated as
// a running average using [xsync.AtomicFloat64], the same lock-free float
// accumulator the teacher uses for latency/ratio gauges elsewhere.
type hitRate struct {
	value xsync.AtomicFloat64
	n     atomic.Int64
}

// observe folds one more hit/miss sample into the running average.
func (h *hitRate) observe(hit bool) {
	n := h.n.Add(1)
	sample := 0.0
	if hit {
		sample = 1.0
	}
	// Incremental mean: avg += (sample - avg) / n.
	for {
		old := h.value.Load()
		next := old + (sample-old)/float64(n)
		if h.value.BitwiseCompareAndSwap(old, next) {
			return
		}
	}
}

// Load returns the current hit-rate estimate.
func (h *hitRate) Load() float64 { return h.value.Load() }
