package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// maxSQLKeyLen is the width of the k column.
const maxSQLKeyLen = 255

// SQLStoreConfig holds MySQL store configuration.
type SQLStoreConfig struct {
	// DSN is a go-sql-driver/mysql data source name,
	// e.g. "todo:secret@tcp(127.0.0.1:3306)/todo".
	DSN string

	// Table holds the entries. Created if missing.
	// Default: "kv_entries"
	Table string

	// Timeout bounds each query.
	// Default: 5s
	Timeout time.Duration
}

// SQLStore implements StateStore on a MySQL table.
type SQLStore struct {
	db      *sql.DB
	table   string
	timeout time.Duration
	closed  atomic.Bool
}

// normalizeDSN parses dsn and forces parseTime so DATETIME columns scan into time.Time.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("parse dsn: database name required")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewSQLStore connects to MySQL and creates the entries table if needed.
func NewSQLStore(cfg SQLStoreConfig) (*SQLStore, error) {
	if cfg.Table == "" {
		cfg.Table = "kv_entries"
	}
	if !tableNameRe.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid table name %q", cfg.Table)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, table: cfg.Table, timeout: cfg.Timeout}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    k VARBINARY(255) NOT NULL,
    v MEDIUMBLOB NOT NULL,
    revision BIGINT UNSIGNED NOT NULL DEFAULT 1,
    created_at DATETIME(6) NOT NULL,
    updated_at DATETIME(6) NOT NULL,
    PRIMARY KEY (k)
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Get retrieves a value by key.
func (s *SQLStore) Get(key string) ([]byte, error) {
	kv, err := s.GetKeyValue(key)
	if err != nil {
		return nil, err
	}
	return kv.Value, nil
}

// GetKeyValue retrieves the entry with its metadata.
func (s *SQLStore) GetKeyValue(key string) (*KeyValue, error) {
	if err := validateSQLKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	kv := &KeyValue{Key: key}
	row := s.db.QueryRowContext(ctx,
		`SELECT v, revision, created_at, updated_at FROM `+s.table+` WHERE k = ?`, key)
	if err := row.Scan(&kv.Value, &kv.Revision, &kv.Created, &kv.Modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return kv, nil
}

// Put replaces the value stored under key, bumping its revision.
func (s *SQLStore) Put(key string, value []byte) error {
	if err := validateSQLKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if value == nil {
		value = []byte{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (k, v, revision, created_at, updated_at) VALUES (?, ?, 1, ?, ?)
ON DUPLICATE KEY UPDATE v = VALUES(v), revision = revision + 1, updated_at = VALUES(updated_at)`,
		key, value, now, now)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLStore) Delete(key string) error {
	if err := validateSQLKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns the keys matching pattern, sorted.
func (s *SQLStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT k FROM `+s.table+` WHERE k LIKE ? ESCAPE '\\' ORDER BY k`, likePattern(pattern))
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		if MatchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// validateSQLKey applies ValidateKey and the column width limit.
func validateSQLKey(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if len(key) > maxSQLKeyLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidKey, len(key), maxSQLKeyLen)
	}
	return nil
}

// likePattern converts a trailing-* key pattern into a LIKE pattern with
// the LIKE metacharacters in the literal part escaped.
func likePattern(pattern string) string {
	wildcard := strings.HasSuffix(pattern, "*")
	literal := strings.TrimSuffix(pattern, "*")

	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	out := r.Replace(literal)
	if wildcard {
		out += "%"
	}
	return out
}
