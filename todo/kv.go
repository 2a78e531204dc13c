package todo

import (
	"errors"

	"github.com/vinayprograms/todokit/state"
)

// KV is the storage the Store reads and writes. Any state.StateStore
// satisfies it.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

var _ KV = state.StateStore(nil)

func isNotFound(err error) bool {
	return errors.Is(err, state.ErrNotFound)
}
