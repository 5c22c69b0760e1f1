//go:build dynffi_libffi && cgo

package native

/*
#cgo LDFLAGS: -lffi -ldl
#include <dlfcn.h>
#include <ffi.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/cobj"
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/mem"
)

// Library is a dlopen'd shared object. Its symbols can be bound to
// function types and called through libffi.
type Library struct {
	handle unsafe.Pointer
	name   string
}

// Open loads a shared library by name or path.
func Open(name string) (*Library, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	h := C.dlopen(cname, C.RTLD_NOW)
	if h == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
			Detail("dlopen %s: %s", name, C.GoString(C.dlerror())).
			Build()
	}
	return &Library{handle: h, name: name}, nil
}

// Lookup resolves a symbol's address.
func (l *Library) Lookup(symbol string) (unsafe.Pointer, error) {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))

	C.dlerror() // clear any prior error; a symbol may legally be NULL
	p := C.dlsym(l.handle, csym)
	if err := C.dlerror(); err != nil {
		return nil, errors.NotFound(errors.PhaseResolve, []string{l.name}, "symbol "+symbol)
	}
	return p, nil
}

// Func resolves a symbol and binds it to ty as a callable function
// object.
func (l *Library) Func(symbol string, ty *ctype.FuncType) (*cobj.FuncObj, error) {
	addr, err := l.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	fn, err := Resolver{}.ResolveFunc(addr, ty)
	if err != nil {
		return nil, err
	}
	return cobj.NewFuncObj(ty, fn), nil
}

// Close unloads the library. Callables resolved from it must not be
// invoked afterwards.
func (l *Library) Close() error {
	if l.handle == nil {
		return nil
	}
	C.dlclose(l.handle)
	l.handle = nil
	return nil
}

// Resolver turns raw code addresses into libffi-backed callables. It
// implements the function-pointer resolution hook used when
// dereferencing pointers to functions.
type Resolver struct{}

func (Resolver) ResolveFunc(addr unsafe.Pointer, ty *ctype.FuncType) (dynffi.Callable, error) {
	if addr == nil {
		return nil, errors.NilPointer(errors.PhaseResolve, nil, ty.String())
	}
	return newFFICallable(addr, ty)
}

type ffiCallable struct {
	addr    unsafe.Pointer
	cif     *C.ffi_cif
	atypes  unsafe.Pointer // C-allocated ffi_type* array the cif points into
	retSize uintptr
}

// newFFICallable prepares the call interface once; Invoke reuses it.
func newFFICallable(addr unsafe.Pointer, ty *ctype.FuncType) (*ffiCallable, error) {
	params := ty.Params()

	var atypes unsafe.Pointer
	var argv **C.ffi_type
	if n := len(params); n > 0 {
		atypes = C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(uintptr(0))))
		slots := unsafe.Slice((**C.ffi_type)(atypes), n)
		for i, p := range params {
			ft, err := ffiTypeOf(p.Type)
			if err != nil {
				C.free(atypes)
				return nil, err
			}
			slots[i] = ft
		}
		argv = (**C.ffi_type)(atypes)
	}

	rtype := &C.ffi_type_void
	var retSize uintptr
	if rt := ty.Return(); rt != nil {
		ft, err := ffiTypeOf(rt)
		if err != nil {
			if atypes != nil {
				C.free(atypes)
			}
			return nil, err
		}
		rtype = ft
		retSize = rt.Size()
	}

	cif := (*C.ffi_cif)(C.malloc(C.size_t(unsafe.Sizeof(C.ffi_cif{}))))
	if status := C.ffi_prep_cif(cif, C.FFI_DEFAULT_ABI, C.uint(len(params)), rtype, argv); status != C.FFI_OK {
		C.free(unsafe.Pointer(cif))
		if atypes != nil {
			C.free(atypes)
		}
		return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			CType(ty.String()).
			Detail("ffi_prep_cif failed with status %d", int(status)).
			Build()
	}

	return &ffiCallable{addr: addr, cif: cif, atypes: atypes, retSize: retSize}, nil
}

func (c *ffiCallable) Invoke(ret unsafe.Pointer, args []unsafe.Pointer) error {
	var avalues *unsafe.Pointer
	if len(args) > 0 {
		avalues = &args[0]
	}

	// libffi widens integral returns to a full ffi_arg; call into an
	// aligned scratch word and copy the low bytes out.
	var scratch [2]uint64
	var rptr unsafe.Pointer
	if c.retSize > 0 {
		rptr = unsafe.Pointer(&scratch[0])
	}

	C.ffi_call(c.cif, (*[0]byte)(c.addr), rptr, avalues)

	if ret != nil && c.retSize > 0 {
		mem.Copy(ret, rptr, c.retSize)
	}
	return nil
}

// ffiTypeOf maps a type descriptor to its libffi descriptor. Scalars
// and pointers only; composite passing is not wired to this backend.
func ffiTypeOf(t ctype.Type) (*C.ffi_type, error) {
	switch ty := t.(type) {
	case *ctype.BasicType:
		switch ty.Kind() {
		case ctype.KindBool, ctype.KindUInt8, ctype.KindChar:
			return &C.ffi_type_uint8, nil
		case ctype.KindInt8:
			return &C.ffi_type_sint8, nil
		case ctype.KindUInt16:
			return &C.ffi_type_uint16, nil
		case ctype.KindInt16:
			return &C.ffi_type_sint16, nil
		case ctype.KindUInt32:
			return &C.ffi_type_uint32, nil
		case ctype.KindInt32:
			return &C.ffi_type_sint32, nil
		case ctype.KindUInt64:
			return &C.ffi_type_uint64, nil
		case ctype.KindInt64:
			return &C.ffi_type_sint64, nil
		case ctype.KindFloat32:
			return &C.ffi_type_float, nil
		case ctype.KindFloat64:
			return &C.ffi_type_double, nil
		}
	case *ctype.EnumType:
		return ffiTypeOf(ty.Underlying())
	case *ctype.PointerType:
		return &C.ffi_type_pointer, nil
	}
	return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
		CType(t.String()).
		Detail("type is not passable through this backend").
		Build()
}
