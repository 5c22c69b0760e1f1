package ctype

// Shape is the closed category a type descriptor belongs to.
type Shape uint8

const (
	ShapeBasic Shape = iota
	ShapeEnum
	ShapePointer
	ShapeStruct
	ShapeUnion
	ShapeArray
	ShapeFunc
)

var shapeNames = [...]string{
	ShapeBasic:   "basic",
	ShapeEnum:    "enum",
	ShapePointer: "pointer",
	ShapeStruct:  "struct",
	ShapeUnion:   "union",
	ShapeArray:   "array",
	ShapeFunc:    "func",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// BasicKind identifies a scalar type with a known native width.
type BasicKind uint8

const (
	KindBool BasicKind = iota
	KindChar
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
)

var basicKindNames = [...]string{
	KindBool:    "bool",
	KindChar:    "char",
	KindInt8:    "int8",
	KindUInt8:   "uint8",
	KindInt16:   "int16",
	KindUInt16:  "uint16",
	KindInt32:   "int32",
	KindUInt32:  "uint32",
	KindInt64:   "int64",
	KindUInt64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

var basicKindSizes = [...]uintptr{
	KindBool:    1,
	KindChar:    1,
	KindInt8:    1,
	KindUInt8:   1,
	KindInt16:   2,
	KindUInt16:  2,
	KindInt32:   4,
	KindUInt32:  4,
	KindInt64:   8,
	KindUInt64:  8,
	KindFloat32: 4,
	KindFloat64: 8,
}

func (k BasicKind) String() string {
	if int(k) < len(basicKindNames) {
		return basicKindNames[k]
	}
	return "unknown"
}

// Size returns the scalar's byte width. Alignment equals size for every
// basic kind.
func (k BasicKind) Size() uintptr {
	if int(k) < len(basicKindSizes) {
		return basicKindSizes[k]
	}
	return 0
}

func (k BasicKind) IsInteger() bool {
	return k >= KindChar && k <= KindUInt64
}

func (k BasicKind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k BasicKind) IsSigned() bool {
	switch k {
	case KindChar, KindInt8, KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}
