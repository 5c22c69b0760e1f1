package cobj

import (
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
)

type createVisitor struct{}

func (createVisitor) Basic(t *ctype.BasicType) (CObj, error)     { return NewBasicObj(t), nil }
func (createVisitor) Pointer(t *ctype.PointerType) (CObj, error) { return NewPointerObj(t), nil }
func (createVisitor) Struct(t *ctype.StructType) (CObj, error)   { return NewStructObj(t), nil }
func (createVisitor) Union(t *ctype.UnionType) (CObj, error)     { return NewUnionObj(t), nil }
func (createVisitor) Array(t *ctype.ArrayType) (CObj, error)     { return NewArrayObj(t), nil }

func (createVisitor) Func(t *ctype.FuncType) (CObj, error) {
	// null function object; callable is bound later
	return NewFuncObj(t, nil), nil
}

// NewObj materializes a zeroed, owned foreign object of t's shape.
// Used for return slots and explicit construction.
func NewObj(t ctype.Type) (CObj, error) {
	return Dispatch[CObj](t, createVisitor{})
}

type viewVisitor struct {
	resolver dynffi.Resolver
	ptr      unsafe.Pointer
}

func (v viewVisitor) Basic(t *ctype.BasicType) (CObj, error) {
	return ViewBasicObj(t, v.ptr), nil
}

func (v viewVisitor) Pointer(t *ctype.PointerType) (CObj, error) {
	return ViewPointerObj(t, v.ptr), nil
}

func (v viewVisitor) Struct(t *ctype.StructType) (CObj, error) {
	return ViewStructObj(t, v.ptr), nil
}

func (v viewVisitor) Union(t *ctype.UnionType) (CObj, error) {
	return ViewUnionObj(t, v.ptr), nil
}

func (v viewVisitor) Array(t *ctype.ArrayType) (CObj, error) {
	return ViewArrayObj(t, v.ptr), nil
}

func (v viewVisitor) Func(t *ctype.FuncType) (CObj, error) {
	if v.resolver == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			CType(t.String()).
			Detail("no resolver available for function pointee").
			Build()
	}
	fn, err := v.resolver.ResolveFunc(v.ptr, t)
	if err != nil {
		return nil, err
	}
	return NewFuncObj(t, fn), nil
}

// ViewObj produces a borrowed foreign object of t's shape viewing ptr.
// Function-shaped types resolve a callable from the address through r
// instead of viewing data.
func ViewObj(t ctype.Type, ptr unsafe.Pointer, r dynffi.Resolver) (CObj, error) {
	return Dispatch[CObj](t, viewVisitor{resolver: r, ptr: ptr})
}
