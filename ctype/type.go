package ctype

import (
	"strconv"
	"strings"
	"unsafe"
)

// PtrSize is the native address width.
const PtrSize = unsafe.Sizeof(uintptr(0))

// Type is an immutable descriptor of a C-like type: its shape, byte
// size, alignment and shape-specific structure. Descriptors are
// referenced, never owned, by foreign objects.
type Type interface {
	Shape() Shape
	Size() uintptr
	Align() uintptr
	String() string
}

// QualType pairs a type with its qualifiers. Only const-ness is
// tracked; it matters to argument conversion, which refuses writable
// exports behind const pointees and enables the string convenience
// path only for read-only character pointers.
type QualType struct {
	Type  Type
	Const bool
}

func (q QualType) String() string {
	if q.Const {
		return "const " + q.Type.String()
	}
	return q.Type.String()
}

// BasicType describes one scalar of a known native width. Use the
// package singletons (Int32, Float64, ...) rather than constructing
// values.
type BasicType struct {
	kind BasicKind
}

var basicTypes = func() [len(basicKindNames)]*BasicType {
	var ts [len(basicKindNames)]*BasicType
	for k := range ts {
		ts[k] = &BasicType{kind: BasicKind(k)}
	}
	return ts
}()

// Scalar type singletons. Two BasicType pointers are equal exactly when
// they describe the same kind.
var (
	Bool    = basicTypes[KindBool]
	Char    = basicTypes[KindChar]
	Int8    = basicTypes[KindInt8]
	UInt8   = basicTypes[KindUInt8]
	Int16   = basicTypes[KindInt16]
	UInt16  = basicTypes[KindUInt16]
	Int32   = basicTypes[KindInt32]
	UInt32  = basicTypes[KindUInt32]
	Int64   = basicTypes[KindInt64]
	UInt64  = basicTypes[KindUInt64]
	Float32 = basicTypes[KindFloat32]
	Float64 = basicTypes[KindFloat64]
)

// Basic returns the singleton descriptor for kind.
func Basic(kind BasicKind) *BasicType {
	return basicTypes[kind]
}

func (t *BasicType) Shape() Shape    { return ShapeBasic }
func (t *BasicType) Kind() BasicKind { return t.kind }
func (t *BasicType) Size() uintptr   { return t.kind.Size() }
func (t *BasicType) Align() uintptr  { return t.kind.Size() }
func (t *BasicType) String() string  { return t.kind.String() }

// EnumType describes a C enum. For every read, write, conversion and
// cast purpose an enum is its underlying integer type; there is no
// separate enum value representation.
type EnumType struct {
	name   string
	consts map[string]int32
}

// EnumIntKind is the underlying integer kind of every enum.
const EnumIntKind = KindInt32

func NewEnumType(name string, consts map[string]int32) *EnumType {
	return &EnumType{name: name, consts: consts}
}

func (t *EnumType) Shape() Shape   { return ShapeEnum }
func (t *EnumType) Size() uintptr  { return EnumIntKind.Size() }
func (t *EnumType) Align() uintptr { return EnumIntKind.Size() }

// Underlying returns the integer type enum values are stored as.
func (t *EnumType) Underlying() *BasicType { return Basic(EnumIntKind) }

func (t *EnumType) Name() string { return t.name }

// Const looks up a named enumerator value.
func (t *EnumType) Const(name string) (int32, bool) {
	v, ok := t.consts[name]
	return v, ok
}

func (t *EnumType) String() string { return "enum " + t.name }

// PointerType describes a pointer to a (possibly qualified) pointee.
type PointerType struct {
	pointee QualType
}

func NewPointerType(pointee QualType) *PointerType {
	return &PointerType{pointee: pointee}
}

func (t *PointerType) Shape() Shape      { return ShapePointer }
func (t *PointerType) Pointee() QualType { return t.pointee }
func (t *PointerType) Size() uintptr     { return PtrSize }
func (t *PointerType) Align() uintptr    { return PtrSize }
func (t *PointerType) String() string    { return "*" + t.pointee.String() }

// ArrayType describes count contiguous elements.
type ArrayType struct {
	elem  Type
	count int
}

func NewArrayType(elem Type, count int) *ArrayType {
	return &ArrayType{elem: elem, count: count}
}

func (t *ArrayType) Shape() Shape   { return ShapeArray }
func (t *ArrayType) Elem() Type     { return t.elem }
func (t *ArrayType) Count() int     { return t.count }
func (t *ArrayType) Size() uintptr  { return t.elem.Size() * uintptr(t.count) }
func (t *ArrayType) Align() uintptr { return t.elem.Align() }

func (t *ArrayType) String() string {
	return "[" + strconv.Itoa(t.count) + "]" + t.elem.String()
}

// Field is one member of a composite type.
type Field struct {
	Name   string
	Type   Type
	Offset uintptr
}

// Composite is implemented by StructType and UnionType.
type Composite interface {
	Type
	Name() string
	Fields() []Field
	FieldByName(name string) (Field, bool)
}

type compositeType struct {
	name   string
	fields []Field
	size   uintptr
	align  uintptr
}

func (t *compositeType) Name() string    { return t.name }
func (t *compositeType) Fields() []Field { return t.fields }
func (t *compositeType) Size() uintptr   { return t.size }
func (t *compositeType) Align() uintptr  { return t.align }

func (t *compositeType) FieldByName(name string) (Field, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StructType lays fields out sequentially with natural alignment and
// trailing padding, the way a C compiler would.
type StructType struct {
	compositeType
}

// NewStructType computes field offsets and the padded struct size from
// the declared field order. Field offsets in the input are ignored.
func NewStructType(name string, fields []Field) *StructType {
	var size, align uintptr
	out := make([]Field, len(fields))
	for i, f := range fields {
		fa := f.Type.Align()
		if fa > align {
			align = fa
		}
		size = alignUp(size, fa)
		out[i] = Field{Name: f.Name, Type: f.Type, Offset: size}
		size += f.Type.Size()
	}
	if align == 0 {
		align = 1
	}
	size = alignUp(size, align)
	return &StructType{compositeType{name: name, fields: out, size: size, align: align}}
}

func (t *StructType) Shape() Shape { return ShapeStruct }

func (t *StructType) String() string { return "struct " + t.name }

// UnionType overlays all fields at offset zero; size and alignment are
// the maxima over the members.
type UnionType struct {
	compositeType
}

func NewUnionType(name string, fields []Field) *UnionType {
	var size, align uintptr
	out := make([]Field, len(fields))
	for i, f := range fields {
		if fs := f.Type.Size(); fs > size {
			size = fs
		}
		if fa := f.Type.Align(); fa > align {
			align = fa
		}
		out[i] = Field{Name: f.Name, Type: f.Type, Offset: 0}
	}
	if align == 0 {
		align = 1
	}
	size = alignUp(size, align)
	return &UnionType{compositeType{name: name, fields: out, size: size, align: align}}
}

func (t *UnionType) Shape() Shape { return ShapeUnion }

func (t *UnionType) String() string { return "union " + t.name }

// FuncType describes a function signature. A nil return type means
// void. Function types occupy no data storage: Size is zero.
type FuncType struct {
	params []QualType
	ret    Type
}

func NewFuncType(params []QualType, ret Type) *FuncType {
	return &FuncType{params: params, ret: ret}
}

func (t *FuncType) Shape() Shape       { return ShapeFunc }
func (t *FuncType) Params() []QualType { return t.params }

// Return is nil for void functions.
func (t *FuncType) Return() Type   { return t.ret }
func (t *FuncType) Size() uintptr  { return 0 }
func (t *FuncType) Align() uintptr { return 1 }

func (t *FuncType) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range t.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if t.ret != nil {
		b.WriteByte(' ')
		b.WriteString(t.ret.String())
	}
	return b.String()
}

// Equal reports structural type equality. Basic types compare by kind,
// pointers by pointee (qualifiers included), arrays by element type and
// count, functions by signature. Enums, structs and unions are nominal:
// they compare by descriptor identity.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch at := a.(type) {
	case *BasicType:
		bt, ok := b.(*BasicType)
		return ok && at.kind == bt.kind
	case *PointerType:
		bt, ok := b.(*PointerType)
		return ok && at.pointee.Const == bt.pointee.Const && Equal(at.pointee.Type, bt.pointee.Type)
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.count == bt.count && Equal(at.elem, bt.elem)
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || len(at.params) != len(bt.params) || !Equal(at.ret, bt.ret) {
			return false
		}
		for i := range at.params {
			if at.params[i].Const != bt.params[i].Const || !Equal(at.params[i].Type, bt.params[i].Type) {
				return false
			}
		}
		return true
	default:
		// enum / struct / union: identity only, handled above
		return false
	}
}

func alignUp(n, align uintptr) uintptr {
	if align == 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
