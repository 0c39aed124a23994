package pool

import "sync"

// float64SlicePool backs the per-frame analog decode scratch buffer: Reader.Next
// fills one []float64 of raw (unscaled) analog samples per frame and discards it
// once the per-channel output has been copied out.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a float64 slice of length size from the pool,
// allocating a new one if the pooled slice's capacity is insufficient. The
// caller must call the returned cleanup function (typically via defer) to
// return the slice to the pool.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
