package cobj

import (
	"unsafe"

	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/mem"
)

// caster is implemented by the object kinds that support layout
// compatible reinterpretation.
type caster interface {
	CastTo(to ctype.Type) (CObj, bool)
}

// Cast reinterprets obj's memory under a different, layout-compatible
// type without copying. A false result means the shape pairing is
// refused; whether that is an error is the caller's decision. Casting
// never changes the source object's own ownership mode.
func Cast(obj CObj, to ctype.Type) (CObj, bool) {
	if c, ok := obj.(caster); ok {
		return c.CastTo(to)
	}
	return nil, false
}

// CastTo permits pointer -> pointer (always) and pointer -> integer
// when the integer width equals the address width.
func (o *PointerObj) CastTo(to ctype.Type) (CObj, bool) {
	switch ty := to.(type) {
	case *ctype.BasicType:
		if ty.Kind().IsInteger() && ty.Size() == ctype.PtrSize {
			ret := NewBasicObj(ty)
			mem.Store(ret.DataPtr(), uintptr(o.Ptr()))
			return ret, true
		}
	case *ctype.PointerType:
		return NewPointerObjTo(ty, o.Ptr()), true
	}
	return nil, false
}

// CastTo permits array -> array when total byte size matches and the
// source address satisfies the target's alignment, and array ->
// pointer always.
func (o *ArrayObj) CastTo(to ctype.Type) (CObj, bool) {
	switch ty := to.(type) {
	case *ctype.ArrayType:
		if ty.Size() == o.typ.Size() && uintptr(o.DataPtr())%ty.Align() == 0 {
			return ViewArrayObj(ty, o.DataPtr()), true
		}
	case *ctype.PointerType:
		return NewPointerObjTo(ty, o.DataPtr()), true
	}
	return nil, false
}

// CastTo permits composite -> pointer always, and composite ->
// composite when byte size matches and alignment is satisfied.
func (o *StructObj) CastTo(to ctype.Type) (CObj, bool) {
	return castComposite(o.DataPtr(), o.typ.Size(), to)
}

func (o *UnionObj) CastTo(to ctype.Type) (CObj, bool) {
	return castComposite(o.DataPtr(), o.typ.Size(), to)
}

func castComposite(data unsafe.Pointer, size uintptr, to ctype.Type) (CObj, bool) {
	switch ty := to.(type) {
	case *ctype.PointerType:
		return NewPointerObjTo(ty, data), true
	case *ctype.StructType:
		if ty.Size() == size && uintptr(data)%ty.Align() == 0 {
			return ViewStructObj(ty, data), true
		}
	case *ctype.UnionType:
		if ty.Size() == size && uintptr(data)%ty.Align() == 0 {
			return ViewUnionObj(ty, data), true
		}
	}
	return nil, false
}
