// Package xunsafe provides a more convenient interface for performing
// unsafe operations than Go's built-in package unsafe.
//
// It exists to give the allocator a single, narrow seam through which all
// pointer arithmetic and header recovery passes, instead of scattering raw
// unsafe.Pointer/uintptr conversions across pkg/alloc.
package xunsafe

import (
	"sync"
	"unsafe"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by implementing [sync.Locker].
type NoCopy [0]sync.Mutex

func (*NoCopy) Lock()   {}
func (*NoCopy) Unlock() {}

// BitCast performs an unsafe bitcast from one type to another.
func BitCast[To, From any](v From) To {
	return *(*To)(unsafe.Pointer(&v))
}
