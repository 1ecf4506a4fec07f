package types

import (
	"errors"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("groq")

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_StringFormats(t *testing.T) {
	t.Parallel()

	plain := NewError(ErrValidation, "message cannot be empty")
	if got, want := plain.Error(), "[VALIDATION] message cannot be empty"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	wrapped := NewError(ErrValidation, "bad input").WithCause(errors.New("boom"))
	if got, want := wrapped.Error(), "[VALIDATION] bad input: boom"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestErrorHelpers_PlainErrors(t *testing.T) {
	t.Parallel()

	plain := errors.New("not structured")
	if IsRetryable(plain) {
		t.Fatalf("plain errors are never retryable")
	}
	if GetErrorCode(plain) != "" {
		t.Fatalf("plain errors carry no code")
	}
}
