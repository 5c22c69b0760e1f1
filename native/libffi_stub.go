//go:build !dynffi_libffi || !cgo

package native

import (
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/cobj"
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
)

// Library is unavailable without the dynffi_libffi build tag and cgo.
type Library struct{}

func errNoLibffi() *errors.Error {
	return errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Detail("libffi backend not compiled in; build with -tags dynffi_libffi").
		Build()
}

// Open always fails in this build.
func Open(name string) (*Library, error) {
	return nil, errNoLibffi()
}

func (l *Library) Lookup(symbol string) (unsafe.Pointer, error) {
	return nil, errNoLibffi()
}

func (l *Library) Func(symbol string, ty *ctype.FuncType) (*cobj.FuncObj, error) {
	return nil, errNoLibffi()
}

func (l *Library) Close() error {
	return nil
}

// Resolver is unavailable without the dynffi_libffi build tag and cgo.
type Resolver struct{}

func (Resolver) ResolveFunc(addr unsafe.Pointer, ty *ctype.FuncType) (dynffi.Callable, error) {
	return nil, errNoLibffi()
}
