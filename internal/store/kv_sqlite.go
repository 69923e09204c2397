package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteCreateKVTable = `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	sqliteGetKV = `SELECT value FROM kv WHERE key = ?`
	sqliteSetKV = `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

type sqliteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens a SQLite database at dsn (a file path or ":memory:") and
// ensures the kv table exists.
func NewSQLiteKV(dsn string) (KV, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite kv: %w", err)
	}

	if _, err = db.Exec(sqliteCreateKVTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite kv table: %w", err)
	}

	return &sqliteKV{db: db}, nil
}

// newSQLiteKVFromDB wraps an existing handle; used by tests with sqlmock.
func newSQLiteKVFromDB(db *sql.DB) KV {
	return &sqliteKV{db: db}
}

// Get implements [KV].
func (s *sqliteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(sqliteGetKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %q: %w", key, err)
	}

	return value, true, nil
}

// Set implements [KV].
func (s *sqliteKV) Set(key, value string) error {
	if _, err := s.db.Exec(sqliteSetKV, key, value); err != nil {
		return fmt.Errorf("sqlite set %q: %w", key, err)
	}

	return nil
}

// Close implements [KV].
func (s *sqliteKV) Close() error {
	return s.db.Close()
}
