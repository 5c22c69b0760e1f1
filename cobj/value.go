package cobj

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/host"
	"github.com/dynffi/dynffi/mem"
)

// ReadValue marshals the memory slot of type t at p into a host value.
// Scalars are boxed by width and signedness; pointer, composite and
// array slots come back as borrowed foreign objects viewing p
// (zero-copy). Function-shaped types fail: a function designator is
// not a first-class storable value.
func ReadValue(t ctype.Type, p unsafe.Pointer) (any, error) {
	return Dispatch[any](t, getVisitor{ptr: p})
}

type getVisitor struct {
	ptr unsafe.Pointer
}

func (v getVisitor) Basic(t *ctype.BasicType) (any, error) {
	return readBasic(t.Kind(), v.ptr), nil
}

func (v getVisitor) Pointer(t *ctype.PointerType) (any, error) {
	return ViewPointerObj(t, v.ptr), nil
}

func (v getVisitor) Struct(t *ctype.StructType) (any, error) {
	return ViewStructObj(t, v.ptr), nil
}

func (v getVisitor) Union(t *ctype.UnionType) (any, error) {
	return ViewUnionObj(t, v.ptr), nil
}

func (v getVisitor) Array(t *ctype.ArrayType) (any, error) {
	return ViewArrayObj(t, v.ptr), nil
}

func (v getVisitor) Func(t *ctype.FuncType) (any, error) {
	return nil, errors.FunctionValue(errors.PhaseRead, t.String())
}

// WriteValue converts a host value and stores it into the slot of type
// t at p. Pointer slots require a compatible PointerObj; composite and
// array slots require a matching foreign object, whose memory is
// byte-copied. Function-shaped types fail, symmetric with ReadValue.
func WriteValue(t ctype.Type, p unsafe.Pointer, v any) error {
	_, err := Dispatch[struct{}](t, setVisitor{ptr: p, value: v})
	return err
}

type setVisitor struct {
	value any
	ptr   unsafe.Pointer
}

func (s setVisitor) Basic(t *ctype.BasicType) (struct{}, error) {
	return struct{}{}, writeBasic(errors.PhaseWrite, nil, t.Kind(), s.ptr, s.value)
}

func (s setVisitor) Pointer(t *ctype.PointerType) (struct{}, error) {
	po, ok := s.value.(*PointerObj)
	if !ok {
		return struct{}{}, errors.TypeMismatch(errors.PhaseWrite, nil, hostTypeName(s.value), t.String())
	}
	if !pointerCompatible(t, po.typ) {
		return struct{}{}, errors.New(errors.PhaseWrite, errors.KindTypeMismatch).
			HostType(po.typ.String()).
			CType(t.String()).
			Detail("incompatible pointer types").
			Build()
	}
	mem.Store(s.ptr, po.Ptr())
	return struct{}{}, nil
}

func (s setVisitor) Struct(t *ctype.StructType) (struct{}, error) {
	so, ok := s.value.(*StructObj)
	if !ok || !ctype.Equal(t, so.typ) {
		return struct{}{}, errors.TypeMismatch(errors.PhaseWrite, nil, hostTypeName(s.value), t.String())
	}
	mem.Copy(s.ptr, so.DataPtr(), t.Size())
	return struct{}{}, nil
}

func (s setVisitor) Union(t *ctype.UnionType) (struct{}, error) {
	uo, ok := s.value.(*UnionObj)
	if !ok || !ctype.Equal(t, uo.typ) {
		return struct{}{}, errors.TypeMismatch(errors.PhaseWrite, nil, hostTypeName(s.value), t.String())
	}
	mem.Copy(s.ptr, uo.DataPtr(), t.Size())
	return struct{}{}, nil
}

func (s setVisitor) Array(t *ctype.ArrayType) (struct{}, error) {
	ao, ok := s.value.(*ArrayObj)
	if !ok || !ctype.Equal(t, ao.typ) {
		return struct{}{}, errors.TypeMismatch(errors.PhaseWrite, nil, hostTypeName(s.value), t.String())
	}
	mem.Copy(s.ptr, ao.DataPtr(), t.Size())
	return struct{}{}, nil
}

func (s setVisitor) Func(t *ctype.FuncType) (struct{}, error) {
	return struct{}{}, errors.FunctionValue(errors.PhaseWrite, t.String())
}

func readBasic(k ctype.BasicKind, p unsafe.Pointer) any {
	switch k {
	case ctype.KindBool:
		return mem.Load[byte](p) != 0
	case ctype.KindChar:
		return mem.Load[byte](p)
	case ctype.KindInt8:
		return mem.Load[int8](p)
	case ctype.KindUInt8:
		return mem.Load[uint8](p)
	case ctype.KindInt16:
		return mem.Load[int16](p)
	case ctype.KindUInt16:
		return mem.Load[uint16](p)
	case ctype.KindInt32:
		return mem.Load[int32](p)
	case ctype.KindUInt32:
		return mem.Load[uint32](p)
	case ctype.KindInt64:
		return mem.Load[int64](p)
	case ctype.KindUInt64:
		return mem.Load[uint64](p)
	case ctype.KindFloat32:
		return mem.Load[float32](p)
	case ctype.KindFloat64:
		return mem.Load[float64](p)
	default:
		return nil
	}
}

func writeBasic(phase errors.Phase, path []string, k ctype.BasicKind, p unsafe.Pointer, v any) error {
	// a matching basic object is copied scalar-for-scalar
	if bo, ok := v.(*BasicObj); ok {
		if bo.typ.Kind() == k {
			mem.Copy(p, bo.DataPtr(), k.Size())
			return nil
		}
		v = bo.Value()
	}

	mismatch := func() error {
		return errors.TypeMismatch(phase, path, hostTypeName(v), k.String())
	}
	overflow := func() error {
		return errors.New(phase, errors.KindOverflow).
			Path(path...).
			Value(v).
			CType(k.String()).
			Detail("value out of range for %s", k).
			Build()
	}

	switch k {
	case ctype.KindBool:
		b, ok := host.ToBool(v)
		if !ok {
			return mismatch()
		}
		var raw byte
		if b {
			raw = 1
		}
		mem.Store(p, raw)
	case ctype.KindChar:
		c, ok := host.ToByte(v)
		if !ok {
			return mismatch()
		}
		mem.Store(p, c)
	case ctype.KindInt8:
		i, ok := host.ToInt64(v)
		if !ok {
			return mismatch()
		}
		if i < math.MinInt8 || i > math.MaxInt8 {
			return overflow()
		}
		mem.Store(p, int8(i))
	case ctype.KindInt16:
		i, ok := host.ToInt64(v)
		if !ok {
			return mismatch()
		}
		if i < math.MinInt16 || i > math.MaxInt16 {
			return overflow()
		}
		mem.Store(p, int16(i))
	case ctype.KindInt32:
		i, ok := host.ToInt64(v)
		if !ok {
			return mismatch()
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return overflow()
		}
		mem.Store(p, int32(i))
	case ctype.KindInt64:
		i, ok := host.ToInt64(v)
		if !ok {
			return mismatch()
		}
		mem.Store(p, i)
	case ctype.KindUInt8:
		u, ok := host.ToUint64(v)
		if !ok {
			return mismatch()
		}
		if u > math.MaxUint8 {
			return overflow()
		}
		mem.Store(p, uint8(u))
	case ctype.KindUInt16:
		u, ok := host.ToUint64(v)
		if !ok {
			return mismatch()
		}
		if u > math.MaxUint16 {
			return overflow()
		}
		mem.Store(p, uint16(u))
	case ctype.KindUInt32:
		u, ok := host.ToUint64(v)
		if !ok {
			return mismatch()
		}
		if u > math.MaxUint32 {
			return overflow()
		}
		mem.Store(p, uint32(u))
	case ctype.KindUInt64:
		u, ok := host.ToUint64(v)
		if !ok {
			return mismatch()
		}
		mem.Store(p, u)
	case ctype.KindFloat32:
		f, ok := host.ToFloat64(v)
		if !ok {
			return mismatch()
		}
		mem.Store(p, float32(f))
	case ctype.KindFloat64:
		f, ok := host.ToFloat64(v)
		if !ok {
			return mismatch()
		}
		mem.Store(p, f)
	default:
		return errors.New(phase, errors.KindUnsupported).
			Detail("unknown basic kind %d", k).
			Build()
	}
	return nil
}

// pointerCompatible is the enforced replacement for the original's
// disabled type-match check: pointers are compatible when their
// pointee types are structurally equal, ignoring pointee const-ness.
func pointerCompatible(dst, src *ctype.PointerType) bool {
	return ctype.Equal(dst.Pointee().Type, src.Pointee().Type)
}

func hostTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	if o, ok := v.(CObj); ok {
		return o.Type().String()
	}
	return fmt.Sprintf("%T", v)
}
