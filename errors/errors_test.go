package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         ErrorCode
		message      string
		wantCategory ErrorCategory
	}{
		{"timeout", ErrCodeTimeout, "operation timed out", CategoryTransient},
		{"unavailable", ErrCodeUnavailable, "kv down", CategoryTransient},
		{"not_found", ErrCodeNotFound, "no such key", CategoryPermanent},
		{"invalid_input", ErrCodeInvalidInput, "bad filter", CategoryPermanent},
		{"corruption", ErrCodeCorruption, "bad payload", CategoryInternal},
		{"internal", ErrCodeInternal, "internal error", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", err.Code(), tt.code)
			}
			if err.Category() != tt.wantCategory {
				t.Errorf("Category() = %v, want %v", err.Category(), tt.wantCategory)
			}
			if err.Error() != tt.message {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.message)
			}
			if err.Timestamp().IsZero() {
				t.Error("Timestamp() should not be zero")
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeNotFound, "list %s not found", "groceries")
	if want := "list groceries not found"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestFromCode(t *testing.T) {
	err := FromCode(ErrCodeUnavailable)
	if err.Error() != "store unavailable" {
		t.Errorf("Error() = %q, want %q", err.Error(), "store unavailable")
	}
	if ErrorCode("BOGUS").Description() != "unknown error" {
		t.Error("unknown code should describe as unknown error")
	}
}

func TestRetryable(t *testing.T) {
	if !Unavailable("down").Retryable() {
		t.Error("UNAVAILABLE should be retryable")
	}
	if InvalidInput("bad").Retryable() {
		t.Error("INVALID_INPUT should not be retryable")
	}
	if !New(ErrCodeNotFound, "x", WithCategory(CategoryTransient)).Retryable() {
		t.Error("category override should change retryability")
	}
}

func TestMetadataIsCopied(t *testing.T) {
	err := New(ErrCodeUnavailable, "persist", WithMetadata("key", "todos.v1"))

	md := err.Metadata()
	md["key"] = "changed"

	if got := err.Metadata()["key"]; got != "todos.v1" {
		t.Errorf("metadata mutated through copy: got %q", got)
	}
	if New(ErrCodeInternal, "x").Metadata() == nil {
		t.Error("Metadata() should never return nil")
	}
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("disk full")
	err := Wrap(base, "writing list")

	if err.Code() != ErrCodeInternal {
		t.Errorf("Code() = %v, want INTERNAL", err.Code())
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should match cause with errors.Is")
	}
	if err.Error() != "writing list: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if WrapWithCode(nil, ErrCodeUnavailable, "x") != nil {
		t.Error("WrapWithCode(nil) should return nil")
	}
}

func TestWrapCodedErrorKeepsCode(t *testing.T) {
	inner := New(ErrCodeUnavailable, "put failed", WithMetadata("backend", "nats"))
	outer := Wrap(inner, "saving")

	if outer.Code() != ErrCodeUnavailable {
		t.Errorf("Code() = %v, want UNAVAILABLE", outer.Code())
	}
	if outer.Metadata()["backend"] != "nats" {
		t.Error("metadata should be carried over")
	}
}

func TestWrapContextErrors(t *testing.T) {
	if Wrap(context.DeadlineExceeded, "x").Code() != ErrCodeTimeout {
		t.Error("deadline should map to TIMEOUT")
	}
	if Wrap(context.Canceled, "x").Code() != ErrCodeCanceled {
		t.Error("cancel should map to CANCELED")
	}
}

func TestWrapWithCode(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := WrapWithCode(base, ErrCodeUnavailable, "persist task list", WithMetadata("key", "todos.v1"))

	if !Is(err, ErrCodeUnavailable) {
		t.Error("Is(UNAVAILABLE) should be true")
	}
	if !IsRetryable(err) {
		t.Error("should be retryable")
	}
	if GetMetadata(err)["key"] != "todos.v1" {
		t.Error("metadata key missing")
	}
	if Cause(err) != base {
		t.Errorf("Cause() = %v, want %v", Cause(err), base)
	}
}

func TestHelpersOnPlainErrors(t *testing.T) {
	plain := fmt.Errorf("plain")

	if Is(plain, ErrCodeInternal) {
		t.Error("plain error has no code")
	}
	if IsRetryable(plain) {
		t.Error("plain error is not retryable")
	}
	if Code(plain) != "" {
		t.Error("Code(plain) should be empty")
	}
	if GetMetadata(plain) != nil {
		t.Error("GetMetadata(plain) should be nil")
	}
	if _, ok := As(plain); ok {
		t.Error("As(plain) should fail")
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	coded := NotFound("missing")
	wrapped := fmt.Errorf("outer: %w", coded)

	got, ok := As(wrapped)
	if !ok || got != coded {
		t.Fatalf("As() = %v, %v", got, ok)
	}
}
