// Package todo keeps a single task list in memory and mirrors it to a
// key-value store.
//
// A Store owns the list. Every mutation updates the in-memory list first and
// then writes the full snapshot under one key (write-through). A failed write
// is reported to the caller and logged, but the in-memory change stands.
//
// # Basic Usage
//
//	kv, _ := state.NewFileStore(state.FileStoreConfig{Dir: dir})
//	store := todo.NewStore(kv)
//	store.Load()
//
//	if err := store.Add("Buy milk"); todo.IsPersistError(err) {
//	    // The task is in the list but not saved.
//	}
//
//	active := store.View(todo.FilterActive)
//	stats := store.Stats()
//
// # Payload
//
// The stored value is a JSON array of objects with exactly four fields:
//
//	[{"id": "...", "text": "Buy milk", "done": false, "createdAt": 1718000000000}]
//
// Loading is tolerant. A missing or unreadable payload gives an empty list,
// and records that do not have the four-field shape are dropped one by one.
package todo
