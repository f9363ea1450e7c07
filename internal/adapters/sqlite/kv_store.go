// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/finq/internal/ports/secondary"
)

// KeyValueStore implements secondary.KeyValueStore with SQLite.
type KeyValueStore struct {
	db *sql.DB
}

// NewKeyValueStore creates a new SQLite key/value store.
func NewKeyValueStore(db *sql.DB) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// GetItem retrieves the value stored under key.
func (s *KeyValueStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := getItem(ctx, s.db, key)
	if err != nil {
		return "", false, &secondary.StorageError{Op: "get", Key: key, Err: err}
	}
	return value, ok, nil
}

// SetItem stores value under key.
func (s *KeyValueStore) SetItem(ctx context.Context, key, value string) error {
	if err := setItem(ctx, s.db, key, value); err != nil {
		return &secondary.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// RemoveItem deletes key.
func (s *KeyValueStore) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return &secondary.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Update replaces the value of key with fn's result inside one transaction.
func (s *KeyValueStore) Update(ctx context.Context, key string, fn func(current string, ok bool) (string, bool, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &secondary.StorageError{Op: "update", Key: key, Err: err}
	}
	defer tx.Rollback()

	current, ok, err := getItem(ctx, tx, key)
	if err != nil {
		return &secondary.StorageError{Op: "update", Key: key, Err: err}
	}

	next, remove, err := fn(current, ok)
	if err != nil {
		return err
	}

	if remove {
		_, err = tx.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key)
	} else {
		err = setItem(ctx, tx, key, next)
	}
	if err != nil {
		return &secondary.StorageError{Op: "update", Key: key, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &secondary.StorageError{Op: "update", Key: key, Err: err}
	}
	return nil
}

// querier is the subset of *sql.DB and *sql.Tx the helpers need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getItem(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func setItem(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

var _ secondary.KeyValueStore = (*KeyValueStore)(nil)
