package cobj

import (
	"sync"
	"unsafe"

	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/host"
)

// Holder is the call-scoped conversion holder set: temporary foreign
// objects plus encoded-string and buffer-export references created
// while converting one call's arguments. Everything registered here
// stays alive until Release, which must run after the native call
// returns.
type Holder struct {
	objs []CObj
	refs []any
}

var holderPool = sync.Pool{
	New: func() any {
		return &Holder{objs: make([]CObj, 0, 8), refs: make([]any, 0, 4)}
	},
}

// NewHolder fetches a holder from the pool.
func NewHolder() *Holder {
	return holderPool.Get().(*Holder)
}

const maxPooledHolderCapacity = 64

// AddObj registers a temporary foreign object; owned memory is freed
// on Release.
func (h *Holder) AddObj(o CObj) {
	h.objs = append(h.objs, o)
}

// AddRef anchors an encoded string or buffer export for the call's
// lifetime.
func (h *Holder) AddRef(r any) {
	h.refs = append(h.refs, r)
}

// Count returns the number of held temporary objects.
func (h *Holder) Count() int {
	return len(h.objs)
}

// Release frees held temporaries and returns the holder to the pool.
// The holder is invalid after Release.
func (h *Holder) Release() {
	for i, o := range h.objs {
		o.Free()
		h.objs[i] = nil
	}
	for i := range h.refs {
		h.refs[i] = nil
	}
	h.objs = h.objs[:0]
	h.refs = h.refs[:0]
	// Only pool small holders to prevent memory bloat
	if cap(h.objs) > maxPooledHolderCapacity {
		return
	}
	holderPool.Put(h)
}

// ConvertArg converts one host value into a foreign object usable as a
// call argument of type t, registering any temporaries in h. codec is
// used for the read-only character pointer convenience path; nil means
// UTF-8.
func ConvertArg(t ctype.Type, v any, h *Holder, codec *host.Codec) (CObj, error) {
	if codec == nil {
		codec = host.UTF8
	}
	return Dispatch[CObj](t, convertVisitor{value: v, holder: h, codec: codec})
}

type convertVisitor struct {
	value  any
	holder *Holder
	codec  *host.Codec
}

func (c convertVisitor) Basic(t *ctype.BasicType) (CObj, error) {
	if bo, ok := c.value.(*BasicObj); ok && bo.typ.Kind() == t.Kind() {
		return bo, nil
	}
	o := NewBasicObj(t)
	if err := writeBasic(errors.PhaseConvert, nil, t.Kind(), o.DataPtr(), c.value); err != nil {
		o.Free()
		return nil, err
	}
	c.holder.AddObj(o)
	return o, nil
}

func (c convertVisitor) Pointer(t *ctype.PointerType) (CObj, error) {
	if po, ok := c.value.(*PointerObj); ok {
		if !pointerCompatible(t, po.typ) {
			return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
				HostType(po.typ.String()).
				CType(t.String()).
				Detail("incompatible pointer types").
				Build()
		}
		return po, nil
	}

	pte := t.Pointee()

	// Read-only character pointer: textual host values are encoded
	// with the call's codec; raw byte strings are used as-is.
	if bt, ok := pte.Type.(*ctype.BasicType); ok && pte.Const && bt.Kind() == ctype.KindChar {
		switch s := c.value.(type) {
		case string:
			buf, err := c.codec.EncodeZ(s)
			if err != nil {
				return nil, err
			}
			c.holder.AddRef(buf)
			return c.hold(t, unsafe.Pointer(unsafe.SliceData(buf))), nil
		case []byte:
			if len(s) == 0 {
				return nil, errors.New(errors.PhaseConvert, errors.KindNilPointer).
					CType(t.String()).
					Detail("empty byte string has no address").
					Build()
			}
			c.holder.AddRef(s)
			return c.hold(t, unsafe.Pointer(unsafe.SliceData(s))), nil
		}
	}

	// Anything else must export a one-dimensional buffer whose element
	// format matches the pointee, writable unless the pointee is const.
	writable := !pte.Const
	buf, err := host.Export(c.value, writable)
	if err != nil {
		return nil, err
	}
	if buf.Dims != 1 {
		return nil, errors.BufferShape(errors.PhaseConvert, nil, buf.Dims)
	}
	if want := ctype.FormatOf(pte.Type); buf.Format != want {
		return nil, errors.BufferFormat(errors.PhaseConvert, nil, buf.Format, want)
	}
	if writable && !buf.Writable {
		return nil, errors.NotWritable(errors.PhaseConvert, nil, hostTypeName(c.value))
	}
	c.holder.AddRef(buf)
	return c.hold(t, buf.Ptr), nil
}

func (c convertVisitor) hold(t *ctype.PointerType, addr unsafe.Pointer) CObj {
	o := NewPointerObjTo(t, addr)
	c.holder.AddObj(o)
	return o
}

func (c convertVisitor) Struct(t *ctype.StructType) (CObj, error) {
	if so, ok := c.value.(*StructObj); ok && ctype.Equal(t, so.typ) {
		return so, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseConvert, nil, hostTypeName(c.value), t.String())
}

func (c convertVisitor) Union(t *ctype.UnionType) (CObj, error) {
	if uo, ok := c.value.(*UnionObj); ok && ctype.Equal(t, uo.typ) {
		return uo, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseConvert, nil, hostTypeName(c.value), t.String())
}

func (c convertVisitor) Array(t *ctype.ArrayType) (CObj, error) {
	if ao, ok := c.value.(*ArrayObj); ok && ctype.Equal(t, ao.typ) {
		return ao, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseConvert, nil, hostTypeName(c.value), t.String())
}

func (c convertVisitor) Func(t *ctype.FuncType) (CObj, error) {
	if fo, ok := c.value.(*FuncObj); ok && ctype.Equal(t, fo.typ) {
		return fo, nil
	}
	return nil, errors.TypeMismatch(errors.PhaseConvert, nil, hostTypeName(c.value), t.String())
}
