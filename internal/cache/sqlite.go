package cache

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver; modernc.org/sqlite is pure Go, no cgo,
	// keeping the binary dependency-light and statically linkable.
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS fingerprints (key TEXT PRIMARY KEY, value BLOB NOT NULL);
CREATE TABLE IF NOT EXISTS metadata     (key TEXT PRIMARY KEY, value BLOB NOT NULL);
CREATE TABLE IF NOT EXISTS lyrics       (key TEXT PRIMARY KEY, value BLOB NOT NULL);
`

// SQLiteStore is the persistent Store backend: a single cache.db file with
// one table per logical cache, WAL-journaled. The pool holds a single
// connection, so reads and writes are serialised through it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if absent) the database at path and
// ensures its schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // modernc.org/sqlite connections are not safely shared across goroutines for writes.

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL journaling: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, t Table, key string) ([]byte, bool, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = ?", string(t))

	var value []byte

	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, t Table, key string, value []byte) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		string(t),
	)

	_, err := s.db.ExecContext(ctx, query, key, value)

	return err
}

func (s *SQLiteStore) Has(ctx context.Context, t Table, key string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE key = ?", string(t))

	var exists int

	err := s.db.QueryRowContext(ctx, query, key).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}

	return err == nil, err
}

func (s *SQLiteStore) Delete(ctx context.Context, t Table, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", string(t))
	_, err := s.db.ExecContext(ctx, query, key)

	return err
}

func (s *SQLiteStore) Clear(ctx context.Context, t Table) error {
	query := fmt.Sprintf("DELETE FROM %s", string(t))
	_, err := s.db.ExecContext(ctx, query)

	return err
}

func (s *SQLiteStore) Size(ctx context.Context, t Table) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", string(t))

	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)

	return count, err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
