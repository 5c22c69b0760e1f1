// Package dynffi provides a dynamic marshalling layer between a host
// runtime with dynamically-typed values and native code and memory that
// is described only by a runtime-introspectable C-like type system.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	dynffi/          Root package with the Callable, Resolver and Buffer
//	                 boundary interfaces
//	├── ctype/       C-like type descriptors: shapes, basic kinds,
//	                 qualifiers, layout computation, format tags
//	├── mem/         Borrowed vs owned memory regions and unsafe
//	                 scalar load/store primitives
//	├── cobj/        Foreign object model, type-directed dispatch,
//	                 value marshalling, argument conversion, casts
//	                 and call invocation
//	├── host/        Host value boundary: scalar coercion, buffer
//	                 export for Go slices, text encoding
//	├── native/      Native-call collaborators: libffi (cgo, opt-in)
//	                 and a wazero-backed sandboxed callee
//	└── errors/      Structured marshalling errors
//
// # Quick Start
//
// Describe a function type, resolve it against a native library (or a
// wasm module via the native package), and call it with host values:
//
//	fty := ctype.NewFuncType([]ctype.QualType{
//	    {Type: ctype.Int32},
//	    {Type: ctype.NewPointerType(ctype.QualType{Type: ctype.Char, Const: true})},
//	}, ctype.Int32)
//
//	fn := cobj.NewFuncObj(fty, callable)
//	ret, err := fn.Call(int32(42), "hi")
//
// Arguments are converted per the parameter types: scalars are coerced,
// strings become NUL-terminated encoded buffers behind const char*
// parameters, Go slices are exported as buffers behind other pointer
// parameters, and composite arguments must already be foreign objects.
// Temporaries created by the conversion live exactly until the call
// returns.
//
// # Ownership
//
// Every foreign object views memory through exactly one mem.Region that
// is either borrowed (never freed by the object) or owned (freed exactly
// once when the object is freed). Casting reinterprets memory under a
// new type without copying and never changes the source's ownership.
//
// # Thread Safety
//
// The engine is synchronous and reentrant but performs no locking. A
// foreign object is not safe for concurrent mutation without external
// synchronization. Call invocation blocks the calling goroutine for the
// duration of the native call.
package dynffi
