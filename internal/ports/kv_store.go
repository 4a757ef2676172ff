package ports

import "context"

// KVStore is durable key-value storage. Get returns an error wrapping
// domain.ErrKeyNotFound when the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
