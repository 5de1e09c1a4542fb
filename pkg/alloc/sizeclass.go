package alloc

import "sort"

// numClasses is the number of fixed size classes the slab serves. See
// spec.md §3.
const numClasses = 21

// SlabPrefetchCount is the number of fixed-size nodes the slab carves out of
// a single arena chunk on a refill. See spec.md §4.3.
const SlabPrefetchCount = 64

// classes holds the 21 size classes, in strictly increasing order.
var classes = [numClasses]int{
	8, 16, 32, 48, 64, 80, 96, 112,
	128, 192, 256, 512, 1024, 2048, 4096, 8192,
	16384, 32768, 65536, 1 << 20, 4 << 20,
}

// sizeToClass returns the smallest class index whose bound is >= n. If n
// exceeds the largest class bound, it returns the last index (20). Because
// classes is strictly increasing, the result is unambiguous.
func sizeToClass(n int) int {
	i := sort.SearchInts(classes[:], n)
	if i >= numClasses {
		return numClasses - 1
	}
	return i
}
