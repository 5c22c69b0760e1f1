package host

import (
	"reflect"
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/errors"
)

var sliceFormats = map[reflect.Kind]string{
	reflect.Bool:    "?",
	reflect.Int8:    "b",
	reflect.Uint8:   "B",
	reflect.Int16:   "h",
	reflect.Uint16:  "H",
	reflect.Int32:   "i",
	reflect.Uint32:  "I",
	reflect.Int64:   "q",
	reflect.Uint64:  "Q",
	reflect.Float32: "f",
	reflect.Float64: "d",
}

// Export exposes a host value as a contiguous memory buffer. Supported
// values are dynffi.Buffer itself and Go slices of fixed-width scalar
// elements; nested slices export with their true dimensionality so the
// consumer can reject them.
//
// The returned Buffer's Ref anchors the slice's backing array; the
// buffer stays valid for as long as the Buffer value is reachable.
func Export(value any, writable bool) (dynffi.Buffer, error) {
	if b, ok := value.(dynffi.Buffer); ok {
		if writable && !b.Writable {
			return dynffi.Buffer{}, errors.NotWritable(errors.PhaseConvert, nil, "dynffi.Buffer")
		}
		return b, nil
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return dynffi.Buffer{}, errors.New(errors.PhaseConvert, errors.KindNotABuffer).
			HostType(typeName(value)).
			Detail("value does not export a contiguous memory buffer").
			Build()
	}

	dims := 1
	elem := rv.Type().Elem()
	for elem.Kind() == reflect.Slice {
		dims++
		elem = elem.Elem()
	}

	format, ok := sliceFormats[elem.Kind()]
	if !ok {
		return dynffi.Buffer{}, errors.New(errors.PhaseConvert, errors.KindNotABuffer).
			HostType(typeName(value)).
			Detail("slice element type %s has no native format", elem).
			Build()
	}

	var ptr unsafe.Pointer
	if dims == 1 && rv.Len() > 0 {
		ptr = rv.UnsafePointer()
	}

	return dynffi.Buffer{
		Ptr:      ptr,
		Format:   format,
		ItemSize: elem.Size(),
		Len:      rv.Len(),
		Dims:     dims,
		Writable: true, // Go slice memory is always writable
		Ref:      value,
	}, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
