package alloc

import (
	"unsafe"

	"github.com/flier/threadcache/internal/debug"
	"github.com/flier/threadcache/pkg/xunsafe"
)

// Slab carves the 21 fixed size classes out of chunks obtained from an
// Arena, serving each class through a LIFO free list. A Slab is not safe
// for concurrent use; see [GlobalSlab] for the shared, mutex-protected
// variant used behind the thread cache. See spec.md §3, §4.3.
type Slab struct {
	arena *Arena
	nodes [numClasses]*node
}

// Init binds the slab to arena a and clears all 21 free list heads.
func (s *Slab) Init(a *Arena) {
	s.arena = a
	s.nodes = [numClasses]*node{}
}

// refill allocates one arena chunk of classes[c]*SlabPrefetchCount bytes and
// slices it into SlabPrefetchCount contiguous nodes, pushing them LIFO onto
// the free list for class c. The chunk remains owned by the arena; the
// individual nodes carved from it are never returned to the arena
// individually.
func (s *Slab) refill(c int) bool {
	size := classes[c]
	chunk := s.arena.Alloc(size * SlabPrefetchCount)
	if chunk == nil {
		return false
	}

	debug.Log(nil, "Slab.refill", "class %d (%d bytes): %d nodes from %p", c, size, SlabPrefetchCount, chunk)

	for i := 0; i < SlabPrefetchCount; i++ {
		p := xunsafe.ByteAdd[byte]((*byte)(chunk), i*size)
		pushNode(&s.nodes[c], nodeAt(unsafe.Pointer(p)))
	}
	return true
}

// Alloc returns a pointer to at least classes[sizeToClass(n)] usable bytes.
// Its contents are undefined. Refills the backing class from the arena if
// its free list is empty. Returns nil only if the underlying arena
// allocation fails.
func (s *Slab) Alloc(n int) unsafe.Pointer {
	c := sizeToClass(n)

	if s.nodes[c] == nil {
		if !s.refill(c) {
			return nil
		}
	}

	p := unsafe.Pointer(popNode(&s.nodes[c]))
	recordClass(p, c)
	return p
}

// Free pushes p back onto the free list for sizeToClass(n). p must have come
// from a prior Alloc call with a size mapping to the same class; passing a
// mismatched size corrupts the free lists. A nil p is a no-op.
func (s *Slab) Free(p unsafe.Pointer, n int) {
	if p == nil {
		return
	}

	c := sizeToClass(n)
	forgetClass(p)
	pushNode(&s.nodes[c], nodeAt(p))
}
