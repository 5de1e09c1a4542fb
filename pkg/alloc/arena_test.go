package alloc

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// TestArenaRoundTrip matches spec.md §8 scenario 1: init, alloc 13 bytes,
// write a sentinel, free, destroy.
func TestArenaRoundTrip(t *testing.T) {
	var a Arena
	a.Init()

	p := a.Alloc(13)
	require.NotNil(t, p)

	b := (*byte)(p)
	*b = 0x7F
	require.Equal(t, byte(0x7F), *b)

	a.Free(p)
	a.Destroy()

	require.Nil(t, a.head)
}

func TestArenaDestroyClearsHead(t *testing.T) {
	var a Arena
	a.Init()

	for i := 0; i < 10; i++ {
		require.NotNil(t, a.Alloc(64))
	}

	a.Destroy()
	require.Nil(t, a.head)
}

func TestArenaDestroyOnEmptyIsSafe(t *testing.T) {
	var a Arena
	require.NotPanics(t, func() {
		a.Destroy()
	})
	require.Nil(t, a.head)
}

func TestArenaFreeUnlinksFromMiddle(t *testing.T) {
	var a Arena
	a.Init()

	p1 := a.Alloc(8)
	p2 := a.Alloc(8)
	p3 := a.Alloc(8)
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	require.NotNil(t, p3)

	// head is p3's block; free the middle (p2's block) and check the list
	// stays a valid doubly-linked, acyclic chain of the remaining two.
	a.Free(p2)

	require.NotNil(t, a.head)
	require.Nil(t, a.head.prev)

	count := 0
	for b := a.head; b != nil; b = b.next {
		count++
		require.Less(t, count, 10, "list must be acyclic")
	}
	require.Equal(t, 2, count)

	a.Destroy()
}

func TestArenaFreeNilIsNoop(t *testing.T) {
	var a Arena
	a.Init()
	require.NotPanics(t, func() {
		a.Free(nil)
	})
}

// TestArenaBulk matches spec.md §8 scenario 3: 100,000 random-sized
// allocations, freed in allocation order, then a full destroy.
func TestArenaBulk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping bulk allocation test in short mode")
	}

	var a Arena
	a.Init()

	rng := rand.New(rand.NewSource(123))

	const count = 100_000
	ptrs := make([]uintptrHolder, 0, count)

	for i := 0; i < count; i++ {
		size := 8 + rng.Intn(4_194_311-8+1)
		p := a.Alloc(size)
		require.NotNil(t, p)
		ptrs = append(ptrs, uintptrHolder{p, size})
	}

	for _, h := range ptrs {
		a.Free(h.p)
	}

	a.Destroy()
	require.Nil(t, a.head)
}

type uintptrHolder struct {
	p    unsafe.Pointer
	size int
}
