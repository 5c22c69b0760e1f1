// Package native provides concrete callees for function objects.
//
// Two backends are included. The wazero adapter treats an instantiated
// WebAssembly module as the foreign side: exported functions become
// callables, with scalar arguments loaded from their native slots and
// passed as core wasm values. The libffi backend (build tag
// dynffi_libffi) resolves symbols with dlopen/dlsym and dispatches
// through ffi_call; without the tag it compiles to stubs that report
// the backend as unavailable.
package native
