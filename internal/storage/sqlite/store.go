// Package sqlite keeps per-session browser state (basket contents, applied
// discount) in a local SQLite file so it survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_store (
    session TEXT NOT NULL,
    key     TEXT NOT NULL,
    value   BLOB NOT NULL,
    PRIMARY KEY (session, key)
);`

var _ basket.Store = (*SessionStore)(nil)

// SessionStore implements basket.Store on a SQLite database. One row per
// session and key.
type SessionStore struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SessionStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	// sqlite allows a single writer; serialize access through one conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating session schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Get(ctx context.Context, session, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM session_store WHERE session = ? AND key = ?`, session, key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading session key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, session, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_store (session, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (session, key) DO UPDATE SET value = excluded.value`,
		session, key, value)
	if err != nil {
		return fmt.Errorf("writing session key %q: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, session, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_store WHERE session = ? AND key = ?`, session, key)
	if err != nil {
		return fmt.Errorf("deleting session key %q: %w", key, err)
	}
	return nil
}
