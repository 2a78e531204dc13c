package main

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vinayprograms/todokit/config"
	"github.com/vinayprograms/todokit/state"
)

// openBackend opens the configured store. The returned func releases it.
func openBackend(cfg config.StoreConfig) (state.StateStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		s := state.NewMemoryStore()
		return s, func() { s.Close() }, nil

	case config.BackendFile:
		s, err := state.NewFileStore(state.FileStoreConfig{Dir: cfg.File.Dir})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.BackendNATS:
		conn, err := nats.Connect(cfg.NATS.URL,
			nats.Name("todo"),
			nats.Timeout(5*time.Second),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to %s: %w", cfg.NATS.URL, err)
		}
		s, err := state.NewNATSStore(state.NATSStoreConfig{
			Conn:   conn,
			Bucket: cfg.NATS.Bucket,
		})
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return s, func() {
			s.Close()
			conn.Drain()
		}, nil

	case config.BackendMySQL:
		s, err := state.NewSQLStore(state.SQLStoreConfig{
			DSN:   cfg.MySQL.DSN,
			Table: cfg.MySQL.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
