// Package cobj implements the type-directed dispatch and conversion
// engine: foreign objects pairing a type descriptor with a memory
// region, value marshalling between memory slots and host values,
// call-argument conversion with call-scoped temporaries, layout
// compatible casting, and call invocation.
//
// # Dispatch
//
// Every shape-specific behavior in the package is selected through a
// single mechanism: Dispatch resolves a descriptor's shape and invokes
// the matching handler of a Visitor. Enum types are always routed to
// the Basic handler with their underlying integer type, so no separate
// enum representation exists anywhere downstream.
//
// # Foreign objects
//
// A foreign object owns or borrows exactly one mem.Region:
//
//	BasicObj    one scalar of a known native width
//	PointerObj  a pointer-sized slot holding an address
//	StructObj   composite memory, field access by descriptor offset
//	UnionObj    composite memory, all fields at offset zero
//	ArrayObj    element-size x count memory, indexed access
//	FuncObj     a resolved native callable, no data memory
//
// Objects created by NewObj own their memory and free it exactly once;
// objects created by ViewObj or by reading a composite slot borrow the
// viewed memory and never free it.
//
// # Calls
//
// FuncObj.Call converts each host argument per the parameter type,
// keeping encoded strings and buffer exports alive in a call-scoped
// Holder, hands the native-call collaborator one address per argument
// plus a return slot, and returns the return slot as a foreign object
// (nil for void). All conversion temporaries are released when the
// call returns, success or failure.
package cobj
