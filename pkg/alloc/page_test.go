package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestAligned(t *testing.T) {
	require.Equal(t, pageSize, aligned(1))
	require.Equal(t, pageSize, aligned(pageSize))
	require.Equal(t, 2*pageSize, aligned(pageSize+1))
	require.Equal(t, 0, aligned(0))
}

func TestGetMemoryFreeMemoryRoundTrip(t *testing.T) {
	p := getMemory(13)
	require.NotNil(t, p)

	b := (*byte)(p)
	*b = 0x7F
	require.Equal(t, byte(0x7F), *b)

	freeMemory(p, 13)
}

func TestFreeMemoryNilIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		freeMemory(nil, 0)
		freeMemory(nil, 100)
		freeMemory(unsafe.Pointer(&struct{}{}), 0)
	})
}

func TestGetMemoryHugePageThreshold(t *testing.T) {
	p := getMemory(hugePageThreshold)
	require.NotNil(t, p)
	freeMemory(p, hugePageThreshold)
}
