package repository

import (
	"context"
)

// KVStore is the durable key-value backend behind the storage bridge.
// Get returns an error wrapping apperrors.ErrNotFound for missing keys.
type KVStore interface {
	// Get returns the raw value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
