package alloc

import (
	"sync"

	"github.com/flier/threadcache/internal/debug"
)

// GlobalSlab is the process-wide, mutex-protected backing store behind
// every goroutine's [ThreadCache]. It owns the global [Arena] and [Slab];
// both are mutated only while mtx is held. This is the same
// lock-around-the-real-thing shape as the teacher's concurrentArena
// decorator, specialized to the slab's batched refill/overflow protocol
// instead of a single Alloc/Reset pair. See spec.md §3, §4.4, §5.
type GlobalSlab struct {
	mtx sync.Mutex

	arena Arena
	slab  Slab

	stats Stats
}

// NewGlobalSlab constructs a GlobalSlab with its arena and slab already
// bound together. The zero value is not usable; always construct through
// this function (mirrors the once-guarded process-wide init called for by
// spec.md §5 — see globalOnce in cache.go, which is what actually enforces
// the once-per-process part).
func NewGlobalSlab() *GlobalSlab {
	g := &GlobalSlab{}
	g.arena.Init()
	g.slab.Init(&g.arena)
	return g
}

// Refill transfers up to batchSize nodes of class c from the global slab to
// the caller, refilling the global slab's own free list from the arena
// first if it is empty. The returned nodes form a LIFO-linked chain of
// length count; because each node is popped from the global list and pushed
// onto the chain, the chain holds them in reverse of their global-list order.
func (g *GlobalSlab) Refill(c, batchSize int) (head *node, count int) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.slab.nodes[c] == nil {
		if !g.slab.refill(c) {
			return nil, 0
		}
	}

	for count < batchSize {
		n := popNode(&g.slab.nodes[c])
		if n == nil {
			break
		}
		pushNode(&head, n)
		count++
	}

	g.stats.refills.Add(1)
	debug.Log(nil, "GlobalSlab.Refill", "class %d: transferred %d nodes", c, count)

	return head, count
}

// Overflow pushes the count nodes reachable from head (a LIFO-linked chain,
// as produced by detaching the front of a thread-cache list) back onto the
// global slab's free list for class c.
func (g *GlobalSlab) Overflow(c int, head *node, count int) {
	if head == nil || count == 0 {
		return
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	// head..tail is already a valid LIFO chain; splice it onto the front of
	// the global list in one step rather than popping/pushing node by node.
	tail := head
	for i := 1; i < count && tail.next != nil; i++ {
		tail = tail.next
	}
	tail.next = g.slab.nodes[c]
	g.slab.nodes[c] = head

	g.stats.overflows.Add(1)
	debug.Log(nil, "GlobalSlab.Overflow", "class %d: returned %d nodes", c, count)
}

// Stats returns a snapshot of the global slab's allocation counters.
func (g *GlobalSlab) Stats() Snapshot {
	return g.stats.snapshot()
}
