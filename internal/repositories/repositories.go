// package repositories provides persistence layer implementations for client state.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TokenKey is the client_state key holding the bearer token.
const TokenKey = "token"

// ErrStateNotFound is returned by [StateRepository.Get] for unknown keys.
var ErrStateNotFound = errors.New("state key not found")

// StateRepository persists client state as key/value pairs.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new [StateRepository] with the given database connection
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the value stored under key, or [ErrStateNotFound].
func (r *StateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM client_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrStateNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query state: %w", err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store state: %w", err)
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM client_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// Clear removes every persisted key.
func (r *StateRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM client_state"); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

// Keys lists the stored keys in name order.
func (r *StateRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM client_state ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Token returns the stored bearer token, empty when signed out.
func (r *StateRepository) Token(ctx context.Context) (string, error) {
	token, err := r.Get(ctx, TokenKey)
	if errors.Is(err, ErrStateNotFound) {
		return "", nil
	}
	return token, err
}

// SetToken stores the bearer token.
func (r *StateRepository) SetToken(ctx context.Context, token string) error {
	return r.Set(ctx, TokenKey, token)
}
