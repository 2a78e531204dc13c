package errors

// ErrorCategory classifies errors by their retry semantics.
type ErrorCategory string

const (
	// CategoryTransient indicates a temporary failure where retry may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates a failure where retry will not help.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates a bug, a broken invariant or corrupt data.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies a specific failure.
type ErrorCode string

const (
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Backing store unreachable or write rejected

	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Key or task does not exist
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"   // Backend or operation not supported
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled

	ErrCodeInternal   ErrorCode = "INTERNAL"   // Unexpected internal error
	ErrCodeCorruption ErrorCode = "CORRUPTION" // Stored payload could not be read
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeUnavailable:
		return CategoryTransient
	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeUnsupported, ErrCodeCanceled:
		return CategoryPermanent
	default:
		return CategoryInternal
	}
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:      "operation timed out",
	ErrCodeUnavailable:  "store unavailable",
	ErrCodeNotFound:     "not found",
	ErrCodeInvalidInput: "invalid input",
	ErrCodeUnsupported:  "not supported",
	ErrCodeCanceled:     "operation canceled",
	ErrCodeInternal:     "internal error",
	ErrCodeCorruption:   "stored data is corrupt",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
