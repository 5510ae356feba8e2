package types

import "errors"

// KV is the key-value byte store the cake store is written against. Keys are
// plain strings; values are opaque bytes. Implementations copy values on the
// way in and out so callers may reuse their buffers.
type KV interface {
	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if the key is absent.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(key string) error

	// Keys returns every key that starts with prefix, sorted ascending.
	// An empty prefix returns all keys.
	Keys(prefix string) ([]string, error)

	// Close releases backend resources. Idempotent: multiple calls succeed.
	// After Close, other operations return ErrClosed.
	Close() error
}

// Key-value store errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("store is closed")
)
