// Package errors provides structured error types for the dynffi module.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type includes rich context: the access
// path, host/C type names, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("param[1]").
//		HostType("string").
//		CType("*int32").
//		Detail("cannot convert string to pointer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseWrite, path, "string", "uint32")
//	err := errors.BufferFormat(errors.PhaseConvert, path, "i", "d")
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
