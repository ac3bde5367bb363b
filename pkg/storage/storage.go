package storage

import "context"

// Storage is a flat byte-oriented key-value store. Get returns ErrNotFound
// for missing keys.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
