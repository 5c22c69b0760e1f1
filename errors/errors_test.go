package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseConvert,
				Kind:     KindTypeMismatch,
				Path:     []string{"param[0]", "x"},
				HostType: "string",
				CType:    "int32",
				Detail:   "cannot convert",
			},
			contains: []string{"[convert]", "type_mismatch", "param[0].x", "string", "int32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRead,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[read]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCall,
				Kind:   KindUnsupported,
				Detail: "no caller",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[call]", "unsupported", "no caller", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseWrite,
		Kind:  KindTypeMismatch,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseConvert,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseConvert, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseWrite, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseConvert, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseConvert, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseConvert, KindTypeMismatch).
		Path("param[1]", "name").
		HostType("string").
		CType("uint32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseConvert {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConvert)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "param[1]" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [param[1] name]", err.Path)
	}
	if err.HostType != "string" {
		t.Errorf("HostType = %v, want 'string'", err.HostType)
	}
	if err.CType != "uint32" {
		t.Errorf("CType = %v, want 'uint32'", err.CType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseWrite, []string{"field"}, "int", "char")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.HostType != "int" || err.CType != "char" {
			t.Errorf("HostType=%v CType=%v", err.HostType, err.CType)
		}
	})

	t.Run("FunctionValue", func(t *testing.T) {
		err := FunctionValue(PhaseRead, "func() int32")
		if err.Kind != KindFunctionValue {
			t.Errorf("Kind = %v, want %v", err.Kind, KindFunctionValue)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseConvert, []string{"param[0]"}, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
	})

	t.Run("BufferShape", func(t *testing.T) {
		err := BufferShape(PhaseConvert, nil, 2)
		if err.Kind != KindBufferShape {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBufferShape)
		}
		if !strings.Contains(err.Detail, "got 2") {
			t.Errorf("Detail = %v, should contain dims", err.Detail)
		}
	})

	t.Run("BufferFormat", func(t *testing.T) {
		err := BufferFormat(PhaseConvert, nil, "i", "d")
		if err.Kind != KindBufferFormat {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBufferFormat)
		}
		if !strings.Contains(err.Detail, `"i"`) || !strings.Contains(err.Detail, `"d"`) {
			t.Errorf("Detail = %v, should name both formats", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseRead, []string{"arr"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseResolve, nil, "symbol puts")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseCall, "composite return via libffi")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}
