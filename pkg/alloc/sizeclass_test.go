package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeToClassMonotonic(t *testing.T) {
	prev := -1
	for n := 1; n <= 8_000_000; n += 997 {
		c := sizeToClass(n)
		require.GreaterOrEqual(t, c, 0)
		require.Less(t, c, numClasses)
		require.GreaterOrEqual(t, c, prev, "size_to_class must be monotonic non-decreasing")
		prev = c
	}
}

func TestSizeToClassExactBounds(t *testing.T) {
	for i, bound := range classes {
		require.Equal(t, i, sizeToClass(bound), "exact bound %d should map to class %d", bound, i)
		if bound > 1 {
			require.LessOrEqual(t, sizeToClass(bound-1), i)
		}
	}
}

func TestSizeToClassOversize(t *testing.T) {
	require.Equal(t, numClasses-1, sizeToClass(classes[numClasses-1]+1))
	require.Equal(t, numClasses-1, sizeToClass(100_000_000))
}

func TestSizeToClassSmallest(t *testing.T) {
	require.Equal(t, 0, sizeToClass(1))
	require.Equal(t, 0, sizeToClass(8))
}
