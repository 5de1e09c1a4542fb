package alloc

import (
	"unsafe"

	"github.com/flier/threadcache/internal/debug"
	"github.com/flier/threadcache/pkg/xunsafe"
	"github.com/flier/threadcache/pkg/xunsafe/layout"
)

// block is the accounting header prepended to every page-granular region an
// Arena owns. size is the total size of the region, including this header,
// and is always a multiple of the system page size. prev/next link the
// block into its owning arena's doubly-linked list.
//
// The payload begins immediately after the header, i.e. at
// unsafe.Pointer(block) + unsafe.Sizeof(block{}).
type block struct {
	size int
	prev *block
	next *block
}

var blockHeaderSize = layout.Size[block]()

// Arena owns a doubly-linked list of page-granular [block]s obtained from
// the page source. head points at the most recently allocated block;
// head.prev is always nil and the list is acyclic. See spec.md §3, §4.2.
//
// A zero Arena is empty and ready to use; [Arena.Init] exists only to make
// that explicit and to match the vocabulary of spec.md §6.
type Arena struct {
	_ xunsafe.NoCopy

	head *block
}

// Init resets the arena to an empty state. Idempotent only when called on a
// zero-initialized Arena; calling it on an arena that already owns blocks
// leaks those blocks without unmapping them, so prefer [Arena.Destroy] for
// that case.
func (a *Arena) Init() {
	a.head = nil
}

// Alloc requests sizeof(header)+n bytes from the page source, places the
// header at the start of the mapping, links the new block at the head of
// the arena's list, and returns a pointer to the byte immediately after the
// header.
//
// Returns nil if the page source fails to obtain memory.
func (a *Arena) Alloc(n int) unsafe.Pointer {
	required := blockHeaderSize + n

	raw := getMemory(required)
	if raw == nil {
		debug.Log(nil, "Arena.Alloc", "failed to obtain %d bytes", required)
		return nil
	}

	b := xunsafe.Cast[block]((*byte)(raw))
	b.size = aligned(required)
	b.prev = nil
	b.next = a.head

	if a.head != nil {
		a.head.prev = b
	}
	a.head = b

	debug.Log(nil, "Arena.Alloc", "block %p size %d", b, b.size)

	return unsafe.Pointer(xunsafe.ByteAdd[byte]((*byte)(raw), blockHeaderSize))
}

// Free locates the header by pointer arithmetic one block behind p,
// unlinks it from the arena's list, and unmaps it.
//
// p must have been returned by a prior call to [Arena.Alloc] on this arena
// and must not already have been freed; violating either precondition is
// undefined behavior. A nil p is a no-op.
func (a *Arena) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	b := xunsafe.ByteAdd[block]((*byte)(p), -blockHeaderSize)

	if b.prev != nil {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	if a.head == b {
		a.head = b.next
	}

	debug.Log(nil, "Arena.Free", "block %p size %d", b, b.size)

	freeMemory(unsafe.Pointer(b), b.size)
}

// Destroy walks the arena's list from head, unmapping every block, then
// clears head. Safe to call on an empty or zero-valued arena.
func (a *Arena) Destroy() {
	curr := a.head
	for curr != nil {
		next := curr.next
		debug.Log(nil, "Arena.Destroy", "block %p size %d", curr, curr.size)
		freeMemory(unsafe.Pointer(curr), curr.size)
		curr = next
	}
	a.head = nil
}
