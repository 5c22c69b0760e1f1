// Package mem provides the two memory ownership regimes foreign objects
// are built on: borrowed views into memory owned by someone else, and
// owned allocations freed exactly once.
package mem

import "unsafe"

// Region is a fixed-size view of bytes. Its ownership mode is set at
// construction and never changes: a borrowed region is never freed by
// this package, an owned region is freed exactly once.
//
// A borrowed region does not keep its source alive; the caller must
// ensure the source outlives every use of the view.
type Region struct {
	ptr   unsafe.Pointer
	size  uintptr
	buf   []byte // backing storage when owned, nil when borrowed
	owned bool
	freed bool
}

// Borrow wraps externally-owned memory. Free on the result is a no-op.
func Borrow(ptr unsafe.Pointer, size uintptr) *Region {
	return &Region{ptr: ptr, size: size}
}

// Alloc returns a zeroed owned region of the given size, aligned to
// align bytes. align must be a power of two.
func Alloc(size, align uintptr) *Region {
	if align == 0 {
		align = 1
	}
	buf := make([]byte, size+align-1)
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	if pad := uintptr(ptr) & (align - 1); pad != 0 {
		ptr = unsafe.Add(ptr, align-pad)
	}
	return &Region{ptr: ptr, size: size, buf: buf, owned: true}
}

func (r *Region) Ptr() unsafe.Pointer { return r.ptr }
func (r *Region) Size() uintptr       { return r.size }
func (r *Region) Owned() bool         { return r.owned }

// Bytes exposes the region's memory as a byte slice.
func (r *Region) Bytes() []byte {
	return unsafe.Slice((*byte)(r.ptr), r.size)
}

// Free releases an owned region. Freeing twice is a programming error
// and panics; freeing a borrowed region does nothing.
func (r *Region) Free() {
	if !r.owned {
		return
	}
	if r.freed {
		panic("mem: double free of owned region")
	}
	r.freed = true
	r.buf = nil
	r.ptr = nil
}

// Copy moves n bytes from src to dst. The ranges must not be accessed
// concurrently; overlapping ranges copy forward like Go's copy.
func Copy(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
