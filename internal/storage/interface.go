package storage

import (
	"context"
)

// Storage defines the key/value persistence used for client credentials
type Storage interface {
	// Get returns the value for key, or model.ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// SetAll writes every entry or none of them
	SetAll(ctx context.Context, entries map[string]string) error

	// Delete removes the given keys; absent keys are ignored
	Delete(ctx context.Context, keys ...string) error
}
