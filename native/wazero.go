package native

import (
	"context"
	"unsafe"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/dynffi/dynffi/cobj"
	"github.com/dynffi/dynffi/ctype"
	"github.com/dynffi/dynffi/errors"
	"github.com/dynffi/dynffi/mem"
)

// WasmModule adapts an instantiated wazero module as a source of
// callables. The host and the module live in disjoint address spaces,
// so only scalar parameters and returns are supported; pointer,
// composite and array signatures are refused at bind time.
type WasmModule struct {
	mod    api.Module
	ctx    context.Context
	logger *zap.Logger
}

// WasmOption configures a WasmModule.
type WasmOption func(*WasmModule)

// WithContext sets the context passed to every wasm invocation.
func WithContext(ctx context.Context) WasmOption {
	return func(m *WasmModule) {
		m.ctx = ctx
	}
}

// WithLogger sets a logger for bind and call diagnostics.
func WithLogger(l *zap.Logger) WasmOption {
	return func(m *WasmModule) {
		m.logger = l
	}
}

// NewWasmModule wraps an instantiated module.
func NewWasmModule(mod api.Module, opts ...WasmOption) *WasmModule {
	m := &WasmModule{
		mod:    mod,
		ctx:    context.Background(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Func binds the named export under the given function type, returning
// a callable function object.
func (m *WasmModule) Func(name string, ty *ctype.FuncType) (*cobj.FuncObj, error) {
	fn := m.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseResolve, nil, "export "+name)
	}

	params := ty.Params()
	kinds := make([]ctype.BasicKind, len(params))
	for i, p := range params {
		k, ok := scalarKind(p.Type)
		if !ok {
			return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
				CType(ty.String()).
				Detail("wasm export %q: parameter %d is not scalar", name, i).
				Build()
		}
		kinds[i] = k
	}

	c := &wasmCallable{fn: fn, ctx: m.ctx, params: kinds}
	if rt := ty.Return(); rt != nil {
		k, ok := scalarKind(rt)
		if !ok {
			return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
				CType(ty.String()).
				Detail("wasm export %q: return type is not scalar", name).
				Build()
		}
		c.ret = k
		c.hasRet = true
	}

	m.logger.Debug("bound wasm export",
		zap.String("export", name),
		zap.String("type", ty.String()))
	return cobj.NewFuncObj(ty, c), nil
}

func scalarKind(t ctype.Type) (ctype.BasicKind, bool) {
	switch ty := t.(type) {
	case *ctype.BasicType:
		return ty.Kind(), true
	case *ctype.EnumType:
		return ty.Underlying().Kind(), true
	}
	return 0, false
}

type wasmCallable struct {
	fn     api.Function
	ctx    context.Context
	params []ctype.BasicKind
	ret    ctype.BasicKind
	hasRet bool
}

func (c *wasmCallable) Invoke(ret unsafe.Pointer, args []unsafe.Pointer) error {
	stack := make([]uint64, len(args))
	for i, p := range args {
		stack[i] = encodeScalar(c.params[i], p)
	}

	results, err := c.fn.Call(c.ctx, stack...)
	if err != nil {
		return err
	}

	if ret != nil && c.hasRet {
		var raw uint64
		if len(results) > 0 {
			raw = results[0]
		}
		decodeScalar(c.ret, ret, raw)
	}
	return nil
}

// encodeScalar loads the scalar at p and widens it to a core wasm
// value: 32-bit integers keep wazero's i32 encoding, floats travel as
// their bit patterns.
func encodeScalar(k ctype.BasicKind, p unsafe.Pointer) uint64 {
	switch k {
	case ctype.KindBool:
		if mem.Load[byte](p) != 0 {
			return 1
		}
		return 0
	case ctype.KindChar, ctype.KindUInt8:
		return uint64(mem.Load[uint8](p))
	case ctype.KindInt8:
		return api.EncodeI32(int32(mem.Load[int8](p)))
	case ctype.KindInt16:
		return api.EncodeI32(int32(mem.Load[int16](p)))
	case ctype.KindUInt16:
		return uint64(mem.Load[uint16](p))
	case ctype.KindInt32:
		return api.EncodeI32(mem.Load[int32](p))
	case ctype.KindUInt32:
		return uint64(mem.Load[uint32](p))
	case ctype.KindInt64:
		return api.EncodeI64(mem.Load[int64](p))
	case ctype.KindUInt64:
		return mem.Load[uint64](p)
	case ctype.KindFloat32:
		return api.EncodeF32(mem.Load[float32](p))
	case ctype.KindFloat64:
		return api.EncodeF64(mem.Load[float64](p))
	}
	return 0
}

// decodeScalar narrows a core wasm value and stores it at p.
func decodeScalar(k ctype.BasicKind, p unsafe.Pointer, raw uint64) {
	switch k {
	case ctype.KindBool:
		var b byte
		if raw != 0 {
			b = 1
		}
		mem.Store(p, b)
	case ctype.KindChar, ctype.KindUInt8:
		mem.Store(p, uint8(raw))
	case ctype.KindInt8:
		mem.Store(p, int8(api.DecodeI32(raw)))
	case ctype.KindInt16:
		mem.Store(p, int16(api.DecodeI32(raw)))
	case ctype.KindUInt16:
		mem.Store(p, uint16(raw))
	case ctype.KindInt32:
		mem.Store(p, api.DecodeI32(raw))
	case ctype.KindUInt32:
		mem.Store(p, uint32(raw))
	case ctype.KindInt64:
		mem.Store(p, int64(raw))
	case ctype.KindUInt64:
		mem.Store(p, raw)
	case ctype.KindFloat32:
		mem.Store(p, api.DecodeF32(raw))
	case ctype.KindFloat64:
		mem.Store(p, api.DecodeF64(raw))
	}
}
