package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Slot is a faultlog.Slot backed by the slots table.
type Slot struct {
	db *sql.DB
}

// NewSlot returns a slot over an initialized database (see InitDBWithPath).
func NewSlot(db *sql.DB) *Slot {
	return &Slot{db: db}
}

// Read returns the value stored under key. ok is false when the key is absent.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := RetryWithBackoff(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Write replaces the value stored under key.
func (s *Slot) Write(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, string(value), now)
		return err
	})
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Slot) Remove(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove slot %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored slot keys in order.
func (s *Slot) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM slots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
