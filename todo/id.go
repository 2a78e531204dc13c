package todo

import "github.com/google/uuid"

// NewID returns a fresh task id. It is a UUIDv7: a millisecond timestamp
// followed by random bits. If the clock-based generator fails it falls back
// to a random v4 UUID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
