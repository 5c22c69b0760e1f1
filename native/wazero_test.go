package native

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/dynffi/dynffi/cobj"
	"github.com/dynffi/dynffi/ctype"
)

// addWasm is a minimal module exporting add(i32, i32) -> i32.
//
//	(module
//	  (func (export "add") (param i32 i32) (result i32)
//	    local.get 0
//	    local.get 1
//	    i32.add))
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic + version
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type: (i32,i32)->i32
	0x03, 0x02, 0x01, 0x00, // func 0 uses type 0
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, // export "add"
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // body
}

func instantiate(t *testing.T) *WasmModule {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { r.Close(ctx) })

	mod, err := r.Instantiate(ctx, addWasm)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return NewWasmModule(mod, WithContext(ctx))
}

func TestWasmCall(t *testing.T) {
	m := instantiate(t)

	fty := ctype.NewFuncType([]ctype.QualType{
		{Type: ctype.Int32},
		{Type: ctype.Int32},
	}, ctype.Int32)

	fn, err := m.Func("add", fty)
	if err != nil {
		t.Fatalf("Func: %v", err)
	}

	res, err := fn.Call(2, 40)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	ret := res.(*cobj.BasicObj)
	if ret.Value() != int32(42) {
		t.Errorf("add(2, 40) = %v, want 42", ret.Value())
	}
	ret.Free()

	// negative operands exercise the i32 sign handling
	res, err = fn.Call(-5, 3)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	ret = res.(*cobj.BasicObj)
	defer ret.Free()
	if ret.Value() != int32(-2) {
		t.Errorf("add(-5, 3) = %v, want -2", ret.Value())
	}
}

func TestWasmFuncErrors(t *testing.T) {
	m := instantiate(t)

	if _, err := m.Func("missing", ctype.NewFuncType(nil, nil)); err == nil {
		t.Error("binding a missing export should fail")
	}

	ptrParam := ctype.NewFuncType([]ctype.QualType{
		{Type: ctype.NewPointerType(ctype.QualType{Type: ctype.Int32})},
	}, nil)
	if _, err := m.Func("add", ptrParam); err == nil {
		t.Error("binding a pointer parameter should fail")
	}
}
