package dynffi

import (
	"unsafe"

	"github.com/dynffi/dynffi/ctype"
)

// Callable is a resolved native function. Invoke performs the foreign
// call: ret points at a return slot sized to the function's return type
// (nil for void functions) and args holds one address per parameter, in
// parameter order, each pointing at a value of the parameter's type.
//
// Invoke blocks until the native code returns. The addresses must stay
// valid for the whole call.
type Callable interface {
	Invoke(ret unsafe.Pointer, args []unsafe.Pointer) error
}

// Resolver turns a code address into a Callable bound to a function
// type. Implementations live in the native package.
type Resolver interface {
	ResolveFunc(addr unsafe.Pointer, ty *ctype.FuncType) (Callable, error)
}

// Buffer is the contiguous-memory export protocol shared with the host
// runtime. It is produced when a pointer object exports a view of its
// pointee memory, and consumed during argument conversion when a host
// value backs a pointer parameter.
type Buffer struct {
	// Ptr addresses the first element.
	Ptr unsafe.Pointer
	// Format is the element format tag (see ctype.FormatOf).
	Format string
	// ItemSize is the byte size of one element.
	ItemSize uintptr
	// Len is the element count.
	Len int
	// Dims is the dimensionality; the marshalling layer only accepts 1.
	Dims int
	// Writable reports whether writes through Ptr are permitted.
	Writable bool
	// Ref anchors the backing storage for the lifetime of the Buffer.
	// Holding the Buffer is what keeps an exported Go slice alive while
	// native code uses it.
	Ref any
}
