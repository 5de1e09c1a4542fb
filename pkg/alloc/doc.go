// Package alloc implements a multi-tier, thread-caching memory allocator on
// top of anonymous OS mappings.
//
// # Layers
//
// Four layers, leaves first:
//
//   - Page source ([getMemory]/[freeMemory]): wraps the OS anonymous-mapping
//     primitive. Computes page-aligned sizes, attempts a huge-page mapping
//     for requests at or above 2 MiB, and falls back to an ordinary
//     anonymous private mapping.
//   - [Arena]: a doubly-linked list of page-granular [block]s. Supports
//     Alloc, Free of a single block, and Destroy (drain everything).
//   - [Slab]: 21 fixed size classes, each served by a LIFO free list of
//     fixed-size [node]s carved out of one arena chunk at a time.
//   - [ThreadCache] + [GlobalSlab]: each goroutine that touches the
//     allocator gets a private cache of 21 free lists that batches work to
//     and from a single mutex-protected global slab.
//
// # Usage
//
//	p := alloc.TCAlloc(48)
//	// ... use the 48 bytes at p ...
//	alloc.TCFree(p, 48)
//
// # Memory safety
//
// This package does not track per-allocation sizes. Every call to
// [Slab.Free], [ThreadCache.Free] or [TCFree] must pass the size used for the
// matching Alloc ([Arena.Free] takes no size); passing
// the wrong size, double-freeing, or freeing a pointer not returned by this
// allocator corrupts the free lists. This is a deliberate, performance
// oriented design choice: see spec.md §7 and §9.
//
// # Concurrency
//
// [Arena] and [Slab] are not safe for concurrent use on their own. The only
// construct in this package meant to be shared across goroutines is
// [GlobalSlab], which guards its arena and free lists with a single mutex.
// A [ThreadCache] is not shared: its state is goroutine-local and never
// touched by any other goroutine. See spec.md §5.
package alloc
