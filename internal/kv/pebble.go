package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// PebbleDirName is the directory the Pebble backend keeps in its data
// directory.
const PebbleDirName = "pebble"

var _ types.KV = (*Pebble)(nil)

// Pebble stores the namespace in an embedded Pebble LSM. Writes are synced.
type Pebble struct {
	mu sync.RWMutex
	db *pebble.DB
}

// OpenPebble opens (creating when needed) the store at dataDir/pebble.
func OpenPebble(dataDir string) (*Pebble, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := pebble.Open(filepath.Join(dataDir, PebbleDirName), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble: %w", err)
	}
	return &Pebble{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (p *Pebble) Get(key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return nil, types.ErrClosed
	}
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %q: %w", key, err)
	}
	defer closer.Close()
	return cloneBytes(v), nil
}

// Set stores value under key.
func (p *Pebble) Set(key string, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return types.ErrClosed
	}
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (p *Pebble) Delete(key string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return types.ErrClosed
	}
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Keys returns the sorted keys that start with prefix. Pebble iterates in
// byte order, which matches string order.
func (p *Pebble) Keys(prefix string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return nil, types.ErrClosed
	}
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		opts.UpperBound = prefixUpperBound([]byte(prefix))
	}
	it, err := p.db.NewIter(opts)
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %w", err)
	}
	defer it.Close()

	keys := []string{}
	for ok := it.First(); ok; ok = it.Next() {
		keys = append(keys, string(it.Key()))
	}
	return keys, it.Error()
}

// Close flushes and closes the database. Idempotent.
func (p *Pebble) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such key exists (all 0xff bytes).
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
