package alloc

import (
	"unsafe"

	"github.com/flier/threadcache/pkg/xunsafe"
)

// node is a free-list cell embedded in the first machine word of an
// otherwise unused payload region. While a node is on a free list it is not
// reachable through any other live pointer; once handed out to a caller its
// bytes are owned by the caller and next is meaningless. See spec.md §3.
type node struct {
	next *node
}

// pushNode prepends n onto the LIFO list headed by *head.
func pushNode(head **node, n *node) {
	n.next = *head
	*head = n
}

// popNode removes and returns the head of the LIFO list headed by *head, or
// nil if the list is empty.
func popNode(head **node) *node {
	n := *head
	if n == nil {
		return nil
	}
	*head = n.next
	return n
}

func nodeAt(p unsafe.Pointer) *node { return xunsafe.Cast[node]((*byte)(p)) }
