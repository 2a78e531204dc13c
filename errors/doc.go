// Package errors provides the structured error taxonomy used across todokit.
//
// Every error carries a code and a category. The category decides whether a
// caller may retry:
//
//   - Transient: the backing store could not be reached; retry may succeed
//   - Permanent: bad input or a missing resource; retry will not help
//   - Internal: an invariant was broken or a payload was corrupt
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "filter must be all, active or done")
//
// Wrap a backend failure while keeping the chain intact:
//
//	if err := kv.Put(key, data); err != nil {
//	    return errors.WrapWithCode(err, errors.ErrCodeUnavailable, "persist task list",
//	        errors.WithMetadata("key", key))
//	}
//
// Check it later:
//
//	if errors.Is(err, errors.ErrCodeUnavailable) && errors.IsRetryable(err) {
//	    // warn and continue
//	}
package errors
