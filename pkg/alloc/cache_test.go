package alloc

import (
	"math/rand"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// TestTCSingleThread matches spec.md §8 scenario 4.
func TestTCSingleThread(t *testing.T) {
	g := NewGlobalSlab()
	tc := NewThreadCache(g)

	sizes := []int{8, 16, 32, 64, 128, 256, 512, 1024, 4096, 8192}
	ptrs := make([]unsafe.Pointer, len(sizes))

	for i, sz := range sizes {
		p := tc.Alloc(sz)
		require.NotNil(t, p, "size %d", sz)
		b := (*byte)(p)
		*b = 0xAB
		ptrs[i] = p
	}

	for i, sz := range sizes {
		require.Equal(t, byte(0xAB), *(*byte)(ptrs[i]))
		_ = sz
	}

	for i := len(ptrs) - 1; i >= 0; i-- {
		tc.Free(ptrs[i], sizes[i])
	}
}

func TestTCAllocFreeNetZeroCount(t *testing.T) {
	g := NewGlobalSlab()
	tc := NewThreadCache(g)

	c := sizeToClass(64)

	// The first Alloc on an empty line refills a whole batch from the global
	// slab, so the baseline is taken after one warm-up pair.
	warm := tc.Alloc(64)
	require.NotNil(t, warm)
	tc.Free(warm, 64)

	before := tc.lines[c].count

	for i := 0; i < 50; i++ {
		p := tc.Alloc(64)
		require.NotNil(t, p)
		tc.Free(p, 64)
	}

	after := tc.lines[c].count
	require.Equal(t, before, after)
	require.GreaterOrEqual(t, after, 0)
}

// TestTCMultiThread matches spec.md §8 scenario 5: 4 goroutines, each fills
// one batch (32 objects of size 64), writes a per-goroutine magic, frees all
// 32 (bringing the line back to a full batch; overflow into the global slab
// happens only on a free made while the line is already full), then performs
// 16 more paired alloc/free cycles.
func TestTCMultiThread(t *testing.T) {
	const goroutines = 4
	const batch = 32

	g := NewGlobalSlab()

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for gid := 0; gid < goroutines; gid++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			tc := NewThreadCache(g)
			magic := byte(0xD0 + id)

			ptrs := make([]unsafe.Pointer, batch)
			for i := 0; i < batch; i++ {
				p := tc.Alloc(64)
				if p == nil {
					errs <- errAllocFailed(id, i)
					return
				}
				*(*byte)(p) = magic
				ptrs[i] = p
			}

			for i := 0; i < batch; i++ {
				if *(*byte)(ptrs[i]) != magic {
					errs <- errMagicMismatch(id, i)
					return
				}
			}

			for i := 0; i < batch; i++ {
				tc.Free(ptrs[i], 64)
			}

			for i := 0; i < 16; i++ {
				p := tc.Alloc(64)
				if p == nil {
					errs <- errAllocFailed(id, i)
					return
				}
				*(*byte)(p) = magic
				if *(*byte)(p) != magic {
					errs <- errMagicMismatch(id, i)
					return
				}
				tc.Free(p, 64)
			}
		}(gid)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// TestTCStress matches spec.md §8 scenario 6: 4 goroutines x 100 rounds x
// 100 allocations of mixed sizes, each freed with its exact allocation
// size. Run with -race to check for torn links in the global free list.
func TestTCStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const goroutines = 4
	const rounds = 100
	const perRound = 100

	sizes := []int{8, 16, 32, 64, 128}

	g := NewGlobalSlab()

	var wg sync.WaitGroup
	for gid := 0; gid < goroutines; gid++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			tc := NewThreadCache(g)
			rng := rand.New(rand.NewSource(int64(id)))

			type tracked struct {
				p  unsafe.Pointer
				sz int
			}
			tracks := make([]tracked, perRound)

			for r := 0; r < rounds; r++ {
				for i := 0; i < perRound; i++ {
					sz := sizes[rng.Intn(len(sizes))]
					p := tc.Alloc(sz)
					if p != nil {
						*(*byte)(p) = byte(id)
					}
					tracks[i] = tracked{p, sz}
				}
				for i := 0; i < perRound; i++ {
					tc.Free(tracks[i].p, tracks[i].sz)
				}
			}
		}(gid)
	}

	wg.Wait()
}

func errAllocFailed(gid, i int) error {
	return &testError{"alloc failed", gid, i}
}

func errMagicMismatch(gid, i int) error {
	return &testError{"magic mismatch", gid, i}
}

type testError struct {
	msg      string
	gid, idx int
}

func (e *testError) Error() string {
	return e.msg
}
