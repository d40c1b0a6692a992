package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(CodeLLMError, "completion failed", cause)
	want := "[LLM_ERROR] completion failed: connection refused"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}

	bare := New(CodeInvalidInput, "unknown role", nil)
	if bare.Error() != "[INVALID_INPUT] unknown role" {
		t.Fatalf("unexpected bare format: %q", bare.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := New(CodeToolFailure, "tool blew up", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
}

func TestAsWrapsUnknown(t *testing.T) {
	if As(nil) != nil {
		t.Fatal("As(nil) must be nil")
	}
	plain := stderrors.New("plain")
	wrapped := As(plain)
	if wrapped.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", wrapped.Code)
	}
	typed := New(CodeTimeout, "slow", nil)
	if As(typed) != typed {
		t.Fatal("As must return typed errors unchanged")
	}
}

func TestCode(t *testing.T) {
	if Code(stderrors.New("x")) != CodeInternal {
		t.Fatal("plain errors default to internal")
	}
	if Code(New(CodeNotFound, "missing", nil)) != CodeNotFound {
		t.Fatal("typed code not extracted")
	}
}
