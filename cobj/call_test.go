package cobj

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unsafe"

	"github.com/dynffi/dynffi"
	"github.com/dynffi/dynffi/ctype"
	dferrors "github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/host"
	"github.com/dynffi/dynffi/mem"
)

// fakeCallable stands in for a native function: it hands the argument
// addresses to a test hook that may write the return slot.
type fakeCallable struct {
	invoke func(ret unsafe.Pointer, args []unsafe.Pointer) error
}

func (f *fakeCallable) Invoke(ret unsafe.Pointer, args []unsafe.Pointer) error {
	if f.invoke == nil {
		return nil
	}
	return f.invoke(ret, args)
}

type resolverFunc func(addr unsafe.Pointer, ty *ctype.FuncType) (dynffi.Callable, error)

func (f resolverFunc) ResolveFunc(addr unsafe.Pointer, ty *ctype.FuncType) (dynffi.Callable, error) {
	return f(addr, ty)
}

func TestCallEndToEnd(t *testing.T) {
	// int32 f(int32, const char*)
	fty := ctype.NewFuncType([]ctype.QualType{
		{Type: ctype.Int32},
		{Type: ctype.NewPointerType(ctype.QualType{Type: ctype.Char, Const: true})},
	}, ctype.Int32)

	var gotInt int32
	var gotStr string
	fn := &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		gotInt = mem.Load[int32](args[0])
		s := mem.Load[unsafe.Pointer](args[1])
		var b []byte
		for i := 0; ; i++ {
			c := mem.Load[byte](unsafe.Add(s, i))
			if c == 0 {
				break
			}
			b = append(b, c)
		}
		gotStr = string(b)
		mem.Store(ret, int32(99))
		return nil
	}}

	o := NewFuncObj(fty, fn)
	res, err := o.Call(42, "hi")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotInt != 42 {
		t.Errorf("callee saw int arg %d, want 42", gotInt)
	}
	if gotStr != "hi" {
		t.Errorf("callee saw string arg %q, want \"hi\"", gotStr)
	}

	ret, ok := res.(*BasicObj)
	if !ok {
		t.Fatalf("Call result = %T, want *BasicObj", res)
	}
	defer ret.Free()
	if ret.Value() != int32(99) {
		t.Errorf("return value = %v, want 99", ret.Value())
	}
}

func TestCallVoidReturnsNil(t *testing.T) {
	fty := ctype.NewFuncType(nil, nil)
	called := false
	o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		called = true
		if ret != nil {
			t.Error("void call should pass a nil return slot")
		}
		return nil
	}})
	res, err := o.Call()
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !called {
		t.Error("callable was not invoked")
	}
	if res != nil {
		t.Errorf("void call result = %v, want nil", res)
	}
}

func TestCallArityMismatchPanics(t *testing.T) {
	fty := ctype.NewFuncType([]ctype.QualType{{Type: ctype.Int32}}, nil)
	o := NewFuncObj(fty, &fakeCallable{})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Call with wrong arity should panic")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "arity mismatch") {
			t.Errorf("panic message = %q", msg)
		}
	}()
	o.Call(1, 2)
}

func TestCallNilCallable(t *testing.T) {
	fty := ctype.NewFuncType(nil, ctype.Int32)
	o := NewFuncObj(fty, nil)
	if _, err := o.Call(); err == nil {
		t.Error("calling a null function object should fail")
	}
}

func TestCallConversionErrorNamesParam(t *testing.T) {
	fty := ctype.NewFuncType([]ctype.QualType{
		{Type: ctype.Int32},
		{Type: ctype.Int32},
	}, nil)
	o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		t.Error("callable should not run when conversion fails")
		return nil
	}})

	_, err := o.Call(1, "bad")
	if err == nil {
		t.Fatal("Call should fail")
	}
	var e *dferrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error type = %T", err)
	}
	if len(e.Path) != 1 || e.Path[0] != "param[1]" {
		t.Errorf("error path = %v, want [param[1]]", e.Path)
	}
}

func TestCallNativeFailureWrapped(t *testing.T) {
	fty := ctype.NewFuncType(nil, ctype.Int32)
	cause := errors.New("trap")
	o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		return cause
	}})

	_, err := o.Call()
	if err == nil {
		t.Fatal("Call should fail")
	}
	if !errors.Is(err, cause) {
		t.Error("native error should be wrapped as the cause")
	}
	var e *dferrors.Error
	if !errors.As(err, &e) || e.Kind != dferrors.KindCallFailed {
		t.Errorf("error = %v, want call_failed", err)
	}
}

func TestCallBufferArgument(t *testing.T) {
	// void f(double*) writes through the pointer
	fty := ctype.NewFuncType([]ctype.QualType{
		{Type: ctype.NewPointerType(ctype.QualType{Type: ctype.Float64})},
	}, nil)
	o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		p := mem.Load[unsafe.Pointer](args[0])
		mem.Store(p, 2.5)
		return nil
	}})

	data := []float64{0, 1}
	if _, err := o.Call(data); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if data[0] != 2.5 {
		t.Errorf("data[0] = %v, want 2.5 (zero-copy write-through)", data[0])
	}
}

func TestCallBufferErrors(t *testing.T) {
	dblPtr := ctype.NewPointerType(ctype.QualType{Type: ctype.Float64})

	tests := []struct {
		name string
		arg  any
		kind dferrors.Kind
	}{
		{"wrong element format", []int32{1, 2}, dferrors.KindBufferFormat},
		{"two dimensional", [][]float64{{1}, {2}}, dferrors.KindBufferShape},
		{"not a buffer", struct{}{}, dferrors.KindNotABuffer},
		{"read-only for writable pointee", dynffi.Buffer{
			Ptr: unsafe.Pointer(new(float64)), Format: "d", ItemSize: 8, Len: 1, Dims: 1, Writable: false,
		}, dferrors.KindNotWritable},
	}

	fty := ctype.NewFuncType([]ctype.QualType{{Type: dblPtr}}, nil)
	o := NewFuncObj(fty, &fakeCallable{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Call(tt.arg)
			if err == nil {
				t.Fatal("Call should fail")
			}
			var e *dferrors.Error
			if !errors.As(err, &e) || e.Kind != tt.kind {
				t.Errorf("error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestCallStringEncoding(t *testing.T) {
	constChar := ctype.NewPointerType(ctype.QualType{Type: ctype.Char, Const: true})
	fty := ctype.NewFuncType([]ctype.QualType{{Type: constChar}}, nil)

	t.Run("terminator appended", func(t *testing.T) {
		var seen []byte
		o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
			p := mem.Load[unsafe.Pointer](args[0])
			for i := 0; i < 4; i++ {
				seen = append(seen, mem.Load[byte](unsafe.Add(p, i)))
			}
			return nil
		}})
		if _, err := o.Call("abc"); err != nil {
			t.Fatalf("Call: %v", err)
		}
		if string(seen) != "abc\x00" {
			t.Errorf("callee saw %q, want \"abc\\x00\"", seen)
		}
	})

	t.Run("invalid utf-8 rejected", func(t *testing.T) {
		o := NewFuncObj(fty, &fakeCallable{})
		_, err := o.Call("\xff\xfe")
		if err == nil {
			t.Fatal("Call should fail")
		}
		var e *dferrors.Error
		if !errors.As(err, &e) || e.Kind != dferrors.KindInvalidUTF8 {
			t.Errorf("error = %v, want invalid_utf8", err)
		}
	})

	t.Run("byte string used directly", func(t *testing.T) {
		raw := []byte{'o', 'k', 0}
		o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
			p := mem.Load[unsafe.Pointer](args[0])
			if p != unsafe.Pointer(unsafe.SliceData(raw)) {
				t.Error("byte string should be passed without copying")
			}
			return nil
		}})
		if _, err := o.Call(raw); err != nil {
			t.Fatalf("Call: %v", err)
		}
	})

	// string arguments are refused for a writable char pointer
	t.Run("writable char pointer refuses string", func(t *testing.T) {
		mutChar := ctype.NewPointerType(ctype.QualType{Type: ctype.Char})
		o := NewFuncObj(ctype.NewFuncType([]ctype.QualType{{Type: mutChar}}, nil), &fakeCallable{})
		if _, err := o.Call("abc"); err == nil {
			t.Error("Call should fail")
		}
	})
}

func TestConvertArgReusesMatchingObjects(t *testing.T) {
	h := NewHolder()
	defer h.Release()

	bo := NewBasicObj(ctype.Int32)
	defer bo.Free()
	got, err := ConvertArg(ctype.Int32, bo, h, nil)
	if err != nil {
		t.Fatalf("ConvertArg: %v", err)
	}
	if got != CObj(bo) {
		t.Error("matching basic object should be reused")
	}
	if h.Count() != 0 {
		t.Errorf("holder count = %d, want 0 (no temporary)", h.Count())
	}

	st := ctype.NewStructType("p", []ctype.Field{{Name: "a", Type: ctype.Int32}})
	so := NewStructObj(st)
	defer so.Free()
	got, err = ConvertArg(st, so, h, nil)
	if err != nil {
		t.Fatalf("ConvertArg: %v", err)
	}
	if got != CObj(so) {
		t.Error("matching struct object should be reused")
	}

	other := ctype.NewStructType("q", []ctype.Field{{Name: "a", Type: ctype.Int32}})
	if _, err := ConvertArg(other, so, h, nil); err == nil {
		t.Error("struct object of a different named type should be refused")
	}
}

func TestConvertArgEnum(t *testing.T) {
	h := NewHolder()
	defer h.Release()

	et := ctype.NewEnumType("mode", map[string]int32{"fast": 1})
	o, err := ConvertArg(et, 1, h, nil)
	if err != nil {
		t.Fatalf("ConvertArg: %v", err)
	}
	bo, ok := o.(*BasicObj)
	if !ok {
		t.Fatalf("ConvertArg = %T, want *BasicObj", o)
	}
	if bo.Value() != int32(1) {
		t.Errorf("value = %v, want int32(1)", bo.Value())
	}
}

func TestHolderReleaseFreesTemporaries(t *testing.T) {
	h := NewHolder()
	o := NewBasicObj(ctype.Int32)
	h.AddObj(o)
	h.AddRef([]byte("x"))
	if h.Count() != 1 {
		t.Fatalf("Count = %d, want 1", h.Count())
	}
	h.Release()
	// freed regions drop their backing memory
	if o.DataPtr() != nil {
		t.Error("held object should be freed on Release")
	}
}

func TestCallCodecOverride(t *testing.T) {
	constChar := ctype.NewPointerType(ctype.QualType{Type: ctype.Char, Const: true})
	fty := ctype.NewFuncType([]ctype.QualType{{Type: constChar}}, nil)

	var seen []byte
	o := NewFuncObj(fty, &fakeCallable{invoke: func(ret unsafe.Pointer, args []unsafe.Pointer) error {
		p := mem.Load[unsafe.Pointer](args[0])
		for i := 0; ; i++ {
			c := mem.Load[byte](unsafe.Add(p, i))
			seen = append(seen, c)
			if c == 0 {
				break
			}
		}
		return nil
	}})
	o.SetCodec(host.UTF8)
	if _, err := o.Call("é"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(seen) != "\xc3\xa9\x00" {
		t.Errorf("callee saw % x", seen)
	}
}
