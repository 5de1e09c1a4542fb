package alloc

import (
	"strconv"
	"sync"
	"unsafe"

	"github.com/timandy/routine"

	"github.com/flier/threadcache/internal/debug"
	"github.com/flier/threadcache/internal/xflag"
)

// defaultBatchSize is the default target number of nodes kept per
// CacheLine, and the threshold that triggers overflow. Not adaptive by
// design. See spec.md §4.4.
const defaultBatchSize = 32

// overflowCount is the number of nodes flushed back to the global slab on
// overflow: half the default batch size, chosen so the cache is left warm
// rather than empty after a flush. See spec.md §4.4.
const overflowCount = 16

// batchSizeOverride lets experiments/tests override the compiled-in default
// batch size without touching the constant; the flag is otherwise unused in
// production, where every ThreadCache is constructed with defaultBatchSize.
var batchSizeOverride = xflag.Func("alloc.batch-size", "override the thread cache batch size", strconv.Atoi)

func batchSize() int {
	if batchSizeOverride != nil && *batchSizeOverride > 0 {
		return *batchSizeOverride
	}
	return defaultBatchSize
}

// CacheLine is one per-class entry in a ThreadCache: a LIFO free list, its
// length, and the batch-size threshold that governs refill/overflow. It is
// padded out to a cache line so that adjacent classes in a ThreadCache's
// array don't false-share a cache line across goroutines pinned to
// different CPUs. See spec.md §3.
//
// State machine (observable from count alone): Empty (count == 0), Holding
// (0 < count < batchSize), Full (count >= batchSize).
type CacheLine struct {
	head      *node
	count     int
	batchSize int

	_ [cacheLinePadding]byte
}

const cacheLinePadding = 64 - 3*int(unsafe.Sizeof(uintptr(0)))

// ThreadCache is a goroutine-local front end over a [GlobalSlab]: 21
// CacheLines, one per size class, that batch refills from and overflows
// into the shared global slab so that the fast path never takes a lock.
// See spec.md §4.4.
//
// A ThreadCache must never be shared between goroutines; use
// [TCAlloc]/[TCFree] to get one bound to the calling goroutine via
// goroutine-local storage, or [NewThreadCache] to manage one explicitly
// (e.g. in tests).
type ThreadCache struct {
	global *GlobalSlab
	lines  [numClasses]CacheLine
	hit    hitRate
}

// NewThreadCache constructs a ThreadCache backed by the given GlobalSlab.
// The returned cache is ready to use immediately; every line starts Empty
// with the default batch size.
func NewThreadCache(g *GlobalSlab) *ThreadCache {
	tc := &ThreadCache{global: g}
	bs := batchSize()
	for i := range tc.lines {
		tc.lines[i].batchSize = bs
	}
	return tc
}

// HitRate returns the fraction of Alloc calls this cache served without
// touching the global slab, as a running average over the cache's
// lifetime.
func (tc *ThreadCache) HitRate() float64 {
	return tc.hit.Load()
}

// Alloc is the fast path: pop the head of the local free list for
// sizeToClass(n) if non-empty; otherwise lock the global slab, refill in a
// batch, and pop. Returns nil only if the global slab's arena allocation
// fails.
func (tc *ThreadCache) Alloc(n int) unsafe.Pointer {
	tc.global.stats.allocs.Add(1)

	c := sizeToClass(n)
	line := &tc.lines[c]

	if line.count > 0 {
		p := unsafe.Pointer(popNode(&line.head))
		line.count--
		tc.hit.observe(true)
		debug.Assert(line.count >= 0, "CacheLine count went negative for class %d", c)
		recordClass(p, c)
		return p
	}

	tc.hit.observe(false)

	head, got := tc.global.Refill(c, line.batchSize)
	if got == 0 {
		return nil
	}

	line.head = head
	line.count = got

	p := unsafe.Pointer(popNode(&line.head))
	line.count--

	debug.Log(nil, "ThreadCache.Alloc", "class %d refilled %d nodes from global", c, got)

	recordClass(p, c)
	return p
}

// Free is the fast path for release: if the local list for sizeToClass(n)
// is at or above its batch-size threshold, first flush overflowCount nodes
// back to the global slab under its mutex; then push p onto the local
// list. p must have been obtained from a matching Alloc call with the same
// n; a mismatched n corrupts the free lists. A nil p is a no-op.
func (tc *ThreadCache) Free(p unsafe.Pointer, n int) {
	if p == nil {
		return
	}

	tc.global.stats.frees.Add(1)

	c := sizeToClass(n)
	line := &tc.lines[c]

	forgetClass(p)

	if line.count >= line.batchSize {
		detached, count := detach(&line.head, overflowCount)
		line.count -= count
		tc.global.Overflow(c, detached, count)
		debug.Log(nil, "ThreadCache.Free", "class %d overflowed %d nodes to global", c, count)
	}

	pushNode(&line.head, nodeAt(p))
	line.count++
}

// detach removes up to n nodes from the front of the LIFO list headed by
// *head and returns them as their own chain, along with how many were
// removed.
func detach(head **node, n int) (*node, int) {
	detachedHead := *head
	if detachedHead == nil {
		return nil, 0
	}

	tail := detachedHead
	count := 1
	for count < n && tail.next != nil {
		tail = tail.next
		count++
	}

	*head = tail.next
	tail.next = nil

	return detachedHead, count
}

var (
	globalOnce     sync.Once
	globalInstance *GlobalSlab

	threadLocalCache = routine.NewThreadLocal[*ThreadCache]()
)

// defaultGlobalSlab returns the process-wide GlobalSlab, constructing it on
// first use. The once-guard is what makes this safe to call from many
// goroutines concurrently: only the first caller runs NewGlobalSlab, and
// every later caller observes the fully-constructed instance. See spec.md
// §5.
func defaultGlobalSlab() *GlobalSlab {
	globalOnce.Do(func() {
		globalInstance = NewGlobalSlab()
	})
	return globalInstance
}

// currentThreadCache returns the calling goroutine's ThreadCache, lazily
// creating one bound to the process-wide GlobalSlab on first touch. This is
// the Go-idiomatic rendering of "thread-local storage" from spec.md §9:
// goroutines have no native TLS, so this uses
// github.com/timandy/routine's goroutine-local storage instead.
func currentThreadCache() *ThreadCache {
	if tc := threadLocalCache.Get(); tc != nil {
		return tc
	}

	tc := NewThreadCache(defaultGlobalSlab())
	threadLocalCache.Set(tc)
	return tc
}

// TCAlloc allocates n bytes through the calling goroutine's thread cache,
// lazily initializing both the cache and the process-wide global slab on
// first use. Returns nil only on underlying OS mapping failure.
func TCAlloc(n int) unsafe.Pointer {
	return currentThreadCache().Alloc(n)
}

// TCFree releases a pointer previously returned by [TCAlloc] with the same
// n, through the calling goroutine's thread cache. A nil p is a no-op.
func TCFree(p unsafe.Pointer, n int) {
	currentThreadCache().Free(p, n)
}
