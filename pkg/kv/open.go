// Package kv provides the public factory for the cake store's key-value
// backends while keeping implementations internal.
package kv

import (
	"github.com/mesh-intelligence/cake/internal/kv"
	"github.com/mesh-intelligence/cake/pkg/types"
)

// Open validates cfg and opens the named backend. The caller must Close the
// returned store.
//
// Example:
//
//	store, err := kv.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".cake-db",
//	})
//	defer store.Close()
func Open(cfg types.Config) (types.KV, error) {
	return kv.Open(cfg)
}

// NewMemory returns an empty in-memory store, useful for tests and previews.
func NewMemory() types.KV {
	return kv.NewMemory()
}
