package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in marshalling the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // type descriptor construction
	PhaseRead    Phase = "read"    // memory to host value
	PhaseWrite   Phase = "write"   // host value to memory
	PhaseConvert Phase = "convert" // call argument conversion
	PhaseCast    Phase = "cast"    // layout-compatible reinterpretation
	PhaseCall    Phase = "call"    // native call invocation
	PhaseResolve Phase = "resolve" // symbol/callable resolution
)

// Kind categorizes the error. Every kind here is a marshalling type
// error at the host boundary; cast refusals are expressed as an absent
// result, never as an error of this package.
type Kind string

const (
	KindTypeMismatch  Kind = "type_mismatch"
	KindFunctionValue Kind = "function_value" // function used as data
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindNotABuffer    Kind = "not_a_buffer"
	KindBufferShape   Kind = "buffer_shape"  // dimensionality != 1
	KindBufferFormat  Kind = "buffer_format" // element format mismatch
	KindNotWritable   Kind = "not_writable"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindNilPointer    Kind = "nil_pointer"
	KindOverflow      Kind = "overflow"
	KindUnsupported   Kind = "unsupported"
	KindNotFound      Kind = "not_found"
	KindCallFailed    Kind = "call_failed"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	HostType string
	CType    string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.HostType != "" || e.CType != "" {
		b.WriteString(": ")
		if e.HostType != "" && e.CType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
			b.WriteString(", C type ")
			b.WriteString(e.CType)
		} else if e.HostType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		} else {
			b.WriteString("C type ")
			b.WriteString(e.CType)
		}
	}

	if e.Detail != "" {
		if e.HostType != "" || e.CType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the access path (parameter, field or element chain)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// HostType sets the host value's type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// CType sets the C type descriptor's name
func (b *Builder) CType(t string) *Builder {
	b.err.CType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, hostType, cType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		HostType: hostType,
		CType:    cType,
	}
}

// FunctionValue creates an error for reading or writing a
// function-shaped type as data
func FunctionValue(phase Phase, cType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFunctionValue,
		CType:  cType,
		Detail: "a function is not a storable value",
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// BufferShape creates a dimensionality error for an exported buffer
func BufferShape(phase Phase, path []string, dims int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferShape,
		Path:   path,
		Detail: fmt.Sprintf("buffer should have only one dimension, got %d", dims),
		Value:  dims,
	}
}

// BufferFormat creates an element format mismatch error
func BufferFormat(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferFormat,
		Path:   path,
		Detail: fmt.Sprintf("buffer doesn't have the good format, got %q, expected %q", got, want),
	}
}

// NotWritable creates an error for a writable pointee backed by a
// read-only buffer
func NotWritable(phase Phase, path []string, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotWritable,
		Path:     path,
		HostType: hostType,
		Detail:   "pointee is writable but the exported buffer is read-only",
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, cType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		CType:  cType,
		Detail: "pointer is nil",
	}
}

// NotFound creates a missing field or symbol error
func NotFound(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Path:   path,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}
