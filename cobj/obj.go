package cobj

import (
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/host"
	"github.com/dynffi/dynffi/mem"
)

// CObj is a foreign object: a type descriptor paired with exactly one
// memory region. The region's ownership mode is fixed at construction;
// Free releases owned memory exactly once and never touches borrowed
// memory.
type CObj interface {
	Type() ctype.Type
	DataPtr() unsafe.Pointer
	Size() uintptr
	Free()
}

type baseObj struct {
	region *mem.Region
}

func (o *baseObj) DataPtr() unsafe.Pointer { return o.region.Ptr() }
func (o *baseObj) Size() uintptr           { return o.region.Size() }
func (o *baseObj) Free()                   { o.region.Free() }

// BasicObj holds one scalar of a known native width.
type BasicObj struct {
	baseObj
	typ *ctype.BasicType
}

// NewBasicObj allocates an owned, zeroed scalar slot.
func NewBasicObj(t *ctype.BasicType) *BasicObj {
	return &BasicObj{baseObj{mem.Alloc(t.Size(), t.Align())}, t}
}

// NewBasicObjValue allocates an owned scalar initialized from a host
// value.
func NewBasicObjValue(t *ctype.BasicType, v any) (*BasicObj, error) {
	o := NewBasicObj(t)
	if err := writeBasic(errors.PhaseWrite, nil, t.Kind(), o.DataPtr(), v); err != nil {
		o.Free()
		return nil, err
	}
	return o, nil
}

// ViewBasicObj wraps a borrowed scalar slot at p.
func ViewBasicObj(t *ctype.BasicType, p unsafe.Pointer) *BasicObj {
	return &BasicObj{baseObj{mem.Borrow(p, t.Size())}, t}
}

func (o *BasicObj) Type() ctype.Type      { return o.typ }
func (o *BasicObj) Kind() ctype.BasicKind { return o.typ.Kind() }

// Value boxes the scalar as a host value.
func (o *BasicObj) Value() any {
	return readBasic(o.typ.Kind(), o.DataPtr())
}

// SetValue coerces a host value into the slot.
func (o *BasicObj) SetValue(v any) error {
	return writeBasic(errors.PhaseWrite, nil, o.typ.Kind(), o.DataPtr(), v)
}

// PointerObj holds an address value in a pointer-sized slot. The
// addressed memory is not owned by the pointer object itself.
type PointerObj struct {
	baseObj
	typ *ctype.PointerType
}

// NewPointerObj allocates an owned null pointer slot.
func NewPointerObj(t *ctype.PointerType) *PointerObj {
	return &PointerObj{baseObj{mem.Alloc(t.Size(), t.Align())}, t}
}

// NewPointerObjTo allocates an owned pointer slot holding addr.
func NewPointerObjTo(t *ctype.PointerType, addr unsafe.Pointer) *PointerObj {
	o := NewPointerObj(t)
	o.SetPtr(addr)
	return o
}

// ViewPointerObj wraps a borrowed pointer slot at p.
func ViewPointerObj(t *ctype.PointerType, p unsafe.Pointer) *PointerObj {
	return &PointerObj{baseObj{mem.Borrow(p, t.Size())}, t}
}

func (o *PointerObj) Type() ctype.Type        { return o.typ }
func (o *PointerObj) Pointee() ctype.QualType { return o.typ.Pointee() }

// Ptr returns the address value stored in the slot.
func (o *PointerObj) Ptr() unsafe.Pointer {
	return mem.Load[unsafe.Pointer](o.DataPtr())
}

func (o *PointerObj) SetPtr(p unsafe.Pointer) {
	mem.Store(o.DataPtr(), p)
}

// Deref materializes a new foreign object of the pointee's shape
// viewing the address this pointer holds. A function-shaped pointee is
// resolved into a callable through r instead of being treated as data;
// r may be nil for data pointees.
func (o *PointerObj) Deref(r dynffi.Resolver) (CObj, error) {
	p := o.Ptr()
	if p == nil {
		return nil, errors.NilPointer(errors.PhaseRead, nil, o.typ.String())
	}
	return ViewObj(o.typ.Pointee().Type, p, r)
}

// MemoryView exports a zero-copy view of n contiguous pointee elements.
func (o *PointerObj) MemoryView(n int) (dynffi.Buffer, error) {
	p := o.Ptr()
	if p == nil {
		return dynffi.Buffer{}, errors.NilPointer(errors.PhaseRead, nil, o.typ.String())
	}
	pte := o.typ.Pointee()
	if pte.Type.Size() == 0 {
		return dynffi.Buffer{}, errors.New(errors.PhaseRead, errors.KindUnsupported).
			CType(o.typ.String()).
			Detail("pointee has no storage size").
			Build()
	}
	return dynffi.Buffer{
		Ptr:      p,
		Format:   ctype.FormatOf(pte.Type),
		ItemSize: pte.Type.Size(),
		Len:      n,
		Dims:     1,
		Writable: !pte.Const,
	}, nil
}

// MemoryViewCString computes the view length by scanning for a zero
// byte. The pointee must be a single-byte character type.
func (o *PointerObj) MemoryViewCString() (dynffi.Buffer, error) {
	pte := o.typ.Pointee()
	bt, ok := pte.Type.(*ctype.BasicType)
	if !ok || bt.Kind() != ctype.KindChar {
		return dynffi.Buffer{}, errors.New(errors.PhaseRead, errors.KindTypeMismatch).
			CType(o.typ.String()).
			Detail("pointer must be a pointer to char").
			Build()
	}
	p := o.Ptr()
	if p == nil {
		return dynffi.Buffer{}, errors.NilPointer(errors.PhaseRead, nil, o.typ.String())
	}
	n := 0
	for mem.Load[byte](unsafe.Add(p, n)) != 0 {
		n++
	}
	return o.MemoryView(n)
}

// StructObj views or owns composite memory; field access computes an
// offset from the field's descriptor.
type StructObj struct {
	baseObj
	typ *ctype.StructType
}

// NewStructObj allocates an owned, zeroed struct.
func NewStructObj(t *ctype.StructType) *StructObj {
	return &StructObj{baseObj{mem.Alloc(t.Size(), t.Align())}, t}
}

// ViewStructObj wraps borrowed struct memory at p.
func ViewStructObj(t *ctype.StructType, p unsafe.Pointer) *StructObj {
	return &StructObj{baseObj{mem.Borrow(p, t.Size())}, t}
}

func (o *StructObj) Type() ctype.Type { return o.typ }

// FieldAddr returns the address of a named field.
func (o *StructObj) FieldAddr(name string) (unsafe.Pointer, error) {
	return fieldAddr(&o.baseObj, o.typ, name)
}

// Field reads a named field as a host value.
func (o *StructObj) Field(name string) (any, error) {
	return compositeField(&o.baseObj, o.typ, name)
}

// SetField writes a host value into a named field.
func (o *StructObj) SetField(name string, v any) error {
	return compositeSetField(&o.baseObj, o.typ, name, v)
}

// UnionObj is a composite whose fields all live at offset zero.
type UnionObj struct {
	baseObj
	typ *ctype.UnionType
}

// NewUnionObj allocates an owned, zeroed union.
func NewUnionObj(t *ctype.UnionType) *UnionObj {
	return &UnionObj{baseObj{mem.Alloc(t.Size(), t.Align())}, t}
}

// ViewUnionObj wraps borrowed union memory at p.
func ViewUnionObj(t *ctype.UnionType, p unsafe.Pointer) *UnionObj {
	return &UnionObj{baseObj{mem.Borrow(p, t.Size())}, t}
}

func (o *UnionObj) Type() ctype.Type { return o.typ }

func (o *UnionObj) FieldAddr(name string) (unsafe.Pointer, error) {
	return fieldAddr(&o.baseObj, o.typ, name)
}

func (o *UnionObj) Field(name string) (any, error) {
	return compositeField(&o.baseObj, o.typ, name)
}

func (o *UnionObj) SetField(name string, v any) error {
	return compositeSetField(&o.baseObj, o.typ, name, v)
}

func fieldAddr(o *baseObj, ct ctype.Composite, name string) (unsafe.Pointer, error) {
	f, ok := ct.FieldByName(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseRead, []string{ct.String()}, "field "+name)
	}
	return unsafe.Add(o.DataPtr(), f.Offset), nil
}

func compositeField(o *baseObj, ct ctype.Composite, name string) (any, error) {
	f, ok := ct.FieldByName(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseRead, []string{ct.String()}, "field "+name)
	}
	return ReadValue(f.Type, unsafe.Add(o.DataPtr(), f.Offset))
}

func compositeSetField(o *baseObj, ct ctype.Composite, name string, v any) error {
	f, ok := ct.FieldByName(name)
	if !ok {
		return errors.NotFound(errors.PhaseWrite, []string{ct.String()}, "field "+name)
	}
	return WriteValue(f.Type, unsafe.Add(o.DataPtr(), f.Offset), v)
}

// ArrayObj views or owns element-size x count memory.
type ArrayObj struct {
	baseObj
	typ *ctype.ArrayType
}

// NewArrayObj allocates an owned, zeroed array.
func NewArrayObj(t *ctype.ArrayType) *ArrayObj {
	return &ArrayObj{baseObj{mem.Alloc(t.Size(), t.Align())}, t}
}

// ViewArrayObj wraps borrowed array memory at p.
func ViewArrayObj(t *ctype.ArrayType, p unsafe.Pointer) *ArrayObj {
	return &ArrayObj{baseObj{mem.Borrow(p, t.Size())}, t}
}

func (o *ArrayObj) Type() ctype.Type { return o.typ }
func (o *ArrayObj) Count() int       { return o.typ.Count() }

// ElemAddr computes the element address index*elem-size from the base.
// Like native indexing it performs no bounds check; Elem and SetElem do.
func (o *ArrayObj) ElemAddr(i int) unsafe.Pointer {
	return unsafe.Add(o.DataPtr(), uintptr(i)*o.typ.Elem().Size())
}

// Elem reads element i as a host value.
func (o *ArrayObj) Elem(i int) (any, error) {
	if i < 0 || i >= o.typ.Count() {
		return nil, errors.OutOfBounds(errors.PhaseRead, nil, i, o.typ.Count())
	}
	return ReadValue(o.typ.Elem(), o.ElemAddr(i))
}

// SetElem writes a host value into element i.
func (o *ArrayObj) SetElem(i int, v any) error {
	if i < 0 || i >= o.typ.Count() {
		return errors.OutOfBounds(errors.PhaseWrite, nil, i, o.typ.Count())
	}
	return WriteValue(o.typ.Elem(), o.ElemAddr(i), v)
}

// FuncObj wraps a resolved native callable bound to a function type.
// It holds no data memory.
type FuncObj struct {
	typ   *ctype.FuncType
	fn    dynffi.Callable
	codec *host.Codec
}

// NewFuncObj binds a callable to its function type. fn may be nil for
// a null function object; calling it fails.
func NewFuncObj(t *ctype.FuncType, fn dynffi.Callable) *FuncObj {
	return &FuncObj{typ: t, fn: fn, codec: host.UTF8}
}

func (o *FuncObj) Type() ctype.Type          { return o.typ }
func (o *FuncObj) FuncType() *ctype.FuncType { return o.typ }
func (o *FuncObj) Callable() dynffi.Callable { return o.fn }
func (o *FuncObj) DataPtr() unsafe.Pointer   { return nil }
func (o *FuncObj) Size() uintptr             { return 0 }
func (o *FuncObj) Free()                     {}

// SetCodec overrides the text codec used for read-only character
// pointer arguments of this function. Defaults to UTF-8.
func (o *FuncObj) SetCodec(c *host.Codec) {
	o.codec = c
}
