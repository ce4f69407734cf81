package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrEmptyKey    = errors.New("storage key cannot be empty")
)

const (
	getValueStatement = `
	SELECT value FROM kv_store WHERE key = ?
	`

	setValueStatement = `
	INSERT INTO kv_store (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()
	`

	removeValueStatement = `
	DELETE FROM kv_store WHERE key = ?
	`

	listKeysStatement = `
	SELECT key FROM kv_store ORDER BY key ASC
	`
)

// LocalStorage is a key/value blob store backed by the kv_store table.
// Values are opaque: callers serialize and deserialize them.
type LocalStorage struct {
	db *sql.DB
}

func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// Get returns the value stored under key or ErrKeyNotFound.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, getValueStatement, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key '%s': %w", key, err)
	}

	return value, nil
}

// Set replaces the value under key.
func (s *LocalStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}

	if _, err := s.db.ExecContext(ctx, setValueStatement, key, value); err != nil {
		return fmt.Errorf("failed to write key '%s': %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, removeValueStatement, key)
	if err != nil {
		return fmt.Errorf("failed to remove key '%s': %w", key, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *LocalStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listKeysStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}

	return keys, nil
}
