package ctype

import "strconv"

// Single-letter format tags for scalar kinds, matching the struct-style
// format convention used by buffer-exporting hosts.
var basicFormats = [...]string{
	KindBool:    "?",
	KindChar:    "c",
	KindInt8:    "b",
	KindUInt8:   "B",
	KindInt16:   "h",
	KindUInt16:  "H",
	KindInt32:   "i",
	KindUInt32:  "I",
	KindInt64:   "q",
	KindUInt64:  "Q",
	KindFloat32: "f",
	KindFloat64: "d",
}

// FormatOf maps a type to its element format tag. Basic types get their
// single-letter tag, enums the tag of their underlying integer type, and
// anything without a native tag a decimal byte-size label such as "16B".
func FormatOf(t Type) string {
	switch ty := t.(type) {
	case *BasicType:
		return basicFormats[ty.Kind()]
	case *EnumType:
		return basicFormats[EnumIntKind]
	default:
		return strconv.FormatUint(uint64(t.Size()), 10) + "B"
	}
}
