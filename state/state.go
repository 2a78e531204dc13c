package state

import (
	"errors"
	"strings"
	"time"
)

// Common errors.
var (
	ErrNotFound   = errors.New("key not found")
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid key")
)

// KeyValue is a stored entry with metadata.
type KeyValue struct {
	Key   string
	Value []byte

	// Revision increases on every put of this key.
	Revision uint64

	Created  time.Time
	Modified time.Time
}

// StateStore is a key-value store holding whole values per key.
type StateStore interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// GetKeyValue retrieves the entry with its metadata.
	// Returns ErrNotFound if the key does not exist.
	GetKeyValue(key string) (*KeyValue, error)

	// Put replaces the value stored under key.
	Put(key string, value []byte) error

	// Delete removes a key. Returns nil if the key does not exist.
	Delete(key string) error

	// Keys returns the keys matching pattern, sorted.
	// Pattern supports * wildcard at the end (e.g., "todos.*").
	Keys(pattern string) ([]string, error)

	// Close releases resources. Later calls return ErrClosed.
	Close() error
}

// ValidateKey checks if a key is valid.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, ` /\`) {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return ErrInvalidKey
	}
	if len(key) > 1024 {
		return ErrInvalidKey
	}
	return nil
}

// MatchPattern checks if a key matches a pattern.
// Supports * wildcard at the end (e.g., "todos.*" matches "todos.work").
func MatchPattern(pattern, key string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}
