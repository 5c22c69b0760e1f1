package cobj

import (
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
)

// Visitor is a bundle of shape handlers consumed by Dispatch. Handlers
// receive the concrete sub-descriptor for their shape; per-call extra
// state travels as visitor fields.
type Visitor[R any] interface {
	Basic(t *ctype.BasicType) (R, error)
	Pointer(t *ctype.PointerType) (R, error)
	Struct(t *ctype.StructType) (R, error)
	Union(t *ctype.UnionType) (R, error)
	Array(t *ctype.ArrayType) (R, error)
	Func(t *ctype.FuncType) (R, error)
}

// Dispatch resolves t's shape and invokes the matching handler of v.
// Enum types delegate to the Basic handler with the enum's underlying
// integer type. This is the sole shape-selection mechanism in the
// module.
func Dispatch[R any](t ctype.Type, v Visitor[R]) (R, error) {
	switch ty := t.(type) {
	case *ctype.BasicType:
		return v.Basic(ty)
	case *ctype.EnumType:
		return v.Basic(ty.Underlying())
	case *ctype.PointerType:
		return v.Pointer(ty)
	case *ctype.StructType:
		return v.Struct(ty)
	case *ctype.UnionType:
		return v.Union(ty)
	case *ctype.ArrayType:
		return v.Array(ty)
	case *ctype.FuncType:
		return v.Func(ty)
	default:
		var zero R
		return zero, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Detail("unknown type shape %T", t).
			Build()
	}
}
