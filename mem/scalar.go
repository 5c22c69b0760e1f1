package mem

import "unsafe"

// Scalar is the set of value types that can be loaded from and stored
// to raw memory directly.
type Scalar interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64 | ~uintptr | unsafe.Pointer
}

// Load reads one scalar of type T at p. p must be aligned for T.
func Load[T Scalar](p unsafe.Pointer) T {
	return *(*T)(p)
}

// Store writes one scalar of type T at p. p must be aligned for T.
func Store[T Scalar](p unsafe.Pointer, v T) {
	*(*T)(p) = v
}
