// Package store keeps the directory of saved cakes and each cake's picks in
// a key-value namespace.
//
// Three key families are used: one fixed key for the cakes index, one key
// per cake for its picks, and a pointer key remembering the last active cake.
// Every index mutation is a read-modify-write of the whole index performed
// under the store mutex. Stored records that fail to decode are logged and
// treated as absent; only backend failures are returned as errors.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// Persisted key layout.
const (
	IndexKey      = "ac_cakes_index_v1"
	ActiveKey     = "ac_active_cake_v1"
	cakeKeyPrefix = "ac_cake_"
	cakeKeySuffix = "_v1"
)

// CakeKey returns the key holding the picks of cake id.
func CakeKey(id string) string {
	return cakeKeyPrefix + id + cakeKeySuffix
}

// cakeIDFromKey reverses CakeKey. The boolean is false for keys outside the
// per-cake family.
func cakeIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, cakeKeyPrefix) || !strings.HasSuffix(key, cakeKeySuffix) {
		return "", false
	}
	id := key[len(cakeKeyPrefix) : len(key)-len(cakeKeySuffix)]
	if id == "" {
		return "", false
	}
	return id, true
}

// Store is the cake store. Create one with New.
type Store struct {
	mu    sync.Mutex
	kv    types.KV
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for decode failures and mutations.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces the time source for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDSource replaces the cake ID generator.
func WithIDSource(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New returns a Store over kv. The Store does not own kv; the caller closes
// it.
func New(kv types.KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
