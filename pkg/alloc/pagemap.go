//go:build debug

package alloc

import (
	"unsafe"

	"github.com/dolthub/maphash"

	"github.com/flier/threadcache/internal/xsync"
)

// pageMapShards controls how many independent locked shards back the debug
// page map. Sharding keeps concurrent Record/ClassOf calls from different
// goroutines from serializing on a single mutex.
const pageMapShards = 64

// pageMap is a debug-build-only side table recording which size class a
// given slab-allocated pointer was carved from. It exists to answer the
// Open Question in spec.md §9: "An implementation may choose to store
// class-id in an out-of-line page map to make this checkable in debug
// builds." It is diagnostic only — release builds never construct or
// consult it, and callers must still pass the correct size to Free.
//
// It shards a pointer's address across pageMapShards independent
// [xsync.Map] instances, keyed and typed so Record/Forget/ClassOf never
// touch a raw map or mutex directly.
type pageMap struct {
	hasher maphash.Hasher[uintptr]
	shards [pageMapShards]xsync.Map[uintptr, int]
}

func newPageMap() *pageMap {
	return &pageMap{hasher: maphash.NewHasher[uintptr]()}
}

func (pm *pageMap) shardFor(addr uintptr) *xsync.Map[uintptr, int] {
	h := pm.hasher.Hash(addr)
	return &pm.shards[h%pageMapShards]
}

// Record associates p with size class c.
func (pm *pageMap) Record(p unsafe.Pointer, c int) {
	addr := uintptr(p)
	pm.shardFor(addr).Store(addr, c)
}

// Forget removes any association for p, e.g. once it is no longer owned by
// the caller (the free list, not the page map, is the source of truth for
// liveness; this just keeps the map from growing without bound).
func (pm *pageMap) Forget(p unsafe.Pointer) {
	addr := uintptr(p)
	pm.shardFor(addr).Delete(addr)
}

// ClassOf reports the size class p was last recorded under, and whether any
// record exists.
func (pm *pageMap) ClassOf(p unsafe.Pointer) (int, bool) {
	addr := uintptr(p)
	return pm.shardFor(addr).Load(addr)
}
