package alloc

import (
	"os"
	"unsafe"

	"github.com/flier/threadcache/internal/debug"
	"github.com/flier/threadcache/pkg/xunsafe/layout"
)

// hugePageThreshold is the smallest aligned request, in bytes, for which the
// page source attempts a huge-page mapping before falling back to an
// ordinary anonymous mapping. See spec.md §4.1.
const hugePageThreshold = 2 * 1024 * 1024

// pageSize is the system page size, queried once at process start.
var pageSize = os.Getpagesize()

// aligned rounds n up to the smallest multiple of the system page size that
// is >= n.
func aligned(n int) int {
	return layout.RoundUp(n, pageSize)
}

// getMemory returns a pointer to an aligned(n)-byte anonymous read/write
// mapping. When aligned(n) is at least hugePageThreshold and the host
// supports huge pages, it first attempts a huge-page mapping; on failure, or
// when the threshold is not met, it falls back to an ordinary anonymous
// private mapping.
//
// Returns nil, reporting the underlying OS error to the diagnostic stream,
// if no mapping could be obtained. Never returns a partially-mapped region.
func getMemory(n int) unsafe.Pointer {
	size := aligned(n)
	if size == 0 {
		return nil
	}

	if size >= hugePageThreshold {
		if addr, err := mmapAnon(size, true); err == nil {
			debug.Log(nil, "getMemory", "huge page mapping of %d bytes at %#x", size, addr)
			return unsafe.Pointer(addr) //nolint:govet
		}
	}

	addr, err := mmapAnon(size, false)
	if err != nil {
		debug.Log(nil, "getMemory", "mmap of %d bytes failed: %v", size, err)
		return nil
	}

	debug.Log(nil, "getMemory", "mapping of %d bytes at %#x", size, addr)
	return unsafe.Pointer(addr) //nolint:govet
}

// freeMemory unmaps aligned(n) bytes starting at p. A nil pointer or a
// non-positive length is a no-op. Unmap failure is logged to the diagnostic
// stream and otherwise swallowed: the allocator continues to assume the
// region has been released, mirroring the best-effort munmap(2) contract.
func freeMemory(p unsafe.Pointer, n int) {
	if p == nil || n <= 0 {
		return
	}

	size := aligned(n)
	if err := munmapAnon(uintptr(p), size); err != nil { //nolint:govet
		debug.Log(nil, "freeMemory", "munmap of %d bytes at %p failed: %v", size, p, err)
	}
}
