// Package state provides the key-value persistence layer behind a task list.
//
// StateStore is a small contract: whole values are read and replaced by key,
// with no partial updates and no cross-key transactions. Backends:
//
//   - MemoryStore: in-process map (tests, throwaway sessions)
//   - FileStore: one file per key with atomic replace (local default)
//   - NATSStore: NATS JetStream KV bucket
//   - SQLStore: a MySQL table
//
// # Usage
//
//	store, _ := state.NewFileStore(state.FileStoreConfig{Dir: "/home/me/.local/share/todo"})
//	defer store.Close()
//
//	store.Put("todos.v1", []byte(`[]`))
//	val, err := store.Get("todos.v1")
//	if errors.Is(err, state.ErrNotFound) {
//	    // nothing saved yet
//	}
//
// Keys are dotted names ("todos.v1", "todos.work"). Keys supports a trailing
// * wildcard:
//
//	keys, _ := store.Keys("todos.*")
//
// Concurrent writers to the same key are last-writer-wins on every backend.
package state
