package errors

import (
	"context"
	"errors"
)

// Wrap wraps err with a message. A coded error keeps its code and metadata;
// context errors map to TIMEOUT or CANCELED; anything else becomes INTERNAL.
// Wrap returns nil when err is nil.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		wrapped := &Error{
			code:      coded.code,
			category:  coded.category,
			message:   message,
			cause:     err,
			metadata:  coded.Metadata(),
			timestamp: coded.timestamp,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// WrapWithCode wraps an error under a specific code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// As extracts the outermost *Error from an error chain.
func As(err error) (*Error, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}

// Is reports whether the outermost coded error in the chain has the given code.
func Is(err error, code ErrorCode) bool {
	if coded, ok := As(err); ok {
		return coded.code == code
	}
	return false
}

// IsRetryable reports whether err is a coded, retryable error.
func IsRetryable(err error) bool {
	if coded, ok := As(err); ok {
		return coded.Retryable()
	}
	return false
}

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrorCode {
	if coded, ok := As(err); ok {
		return coded.code
	}
	return ""
}

// GetMetadata extracts metadata, or nil for uncoded errors.
func GetMetadata(err error) map[string]string {
	if coded, ok := As(err); ok {
		return coded.Metadata()
	}
	return nil
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}
