package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64SliceReturnsExactLength(t *testing.T) {
	slice, cleanup := GetFloat64Slice(100)
	defer cleanup()

	require.Len(t, slice, 100)
	require.GreaterOrEqual(t, cap(slice), 100)
}

func TestGetFloat64SliceReusesUnderlyingArray(t *testing.T) {
	slice1, cleanup1 := GetFloat64Slice(50)
	ptr1 := &slice1[0]
	cleanup1()

	slice2, cleanup2 := GetFloat64Slice(50)
	defer cleanup2()
	ptr2 := &slice2[0]

	require.Equal(t, ptr1, ptr2)
}

func TestGetFloat64SliceGrowsWhenCapacityInsufficient(t *testing.T) {
	_, cleanup1 := GetFloat64Slice(10)
	cleanup1()

	slice2, cleanup2 := GetFloat64Slice(1000)
	defer cleanup2()

	require.Len(t, slice2, 1000)
	require.GreaterOrEqual(t, cap(slice2), 1000)
}

func TestFloat64SlicePoolConcurrentAccess(t *testing.T) {
	const goroutines = 100
	done := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			slice, cleanup := GetFloat64Slice(50)
			defer cleanup()
			for j := range slice {
				slice[j] = float64(j)
			}
			done <- true
		}()
	}

	for i := 0; i < goroutines; i++ {
		<-done
	}
}
