package cobj

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/dynffi/dynffi/errors"
)

// Call converts each host argument per the function type, invokes the
// native callable with one address per argument plus a return slot,
// and returns the return slot as a foreign object (nil for a void
// function).
//
// An argument-count mismatch is a calling-contract violation and
// panics; conversion failures return a type error and leave no
// effects. Temporaries created for the conversion are released when
// Call returns, success or failure.
func (o *FuncObj) Call(args ...any) (any, error) {
	params := o.typ.Params()
	if len(args) != len(params) {
		panic(fmt.Sprintf("cobj: arity mismatch calling %s: got %d arguments, want %d",
			o.typ, len(args), len(params)))
	}
	if o.fn == nil {
		return nil, errors.New(errors.PhaseCall, errors.KindNilPointer).
			CType(o.typ.String()).
			Detail("function object has no callable").
			Build()
	}

	holder := NewHolder()
	defer holder.Release()

	ptrs := make([]unsafe.Pointer, len(params))
	for i, p := range params {
		arg, err := ConvertArg(p.Type, args[i], holder, o.codec)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
				e.Path = []string{fmt.Sprintf("param[%d]", i)}
			}
			return nil, err
		}
		ptrs[i] = arg.DataPtr()
	}

	var ret CObj
	var retPtr unsafe.Pointer
	if rt := o.typ.Return(); rt != nil {
		r, err := NewObj(rt)
		if err != nil {
			return nil, err
		}
		ret = r
		retPtr = r.DataPtr()
	}

	debugf("invoking %s with %d args", o.typ, len(ptrs))
	if err := o.fn.Invoke(retPtr, ptrs); err != nil {
		if ret != nil {
			ret.Free()
		}
		Logger().Debug("native call failed",
			zap.String("type", o.typ.String()),
			zap.Error(err))
		return nil, errors.New(errors.PhaseCall, errors.KindCallFailed).
			CType(o.typ.String()).
			Cause(err).
			Build()
	}

	if ret != nil {
		return ret, nil
	}
	return nil, nil
}
