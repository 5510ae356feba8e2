package kv

import (
	"sort"
	"strings"
	"sync"

	"github.com/mesh-intelligence/cake/pkg/types"
)

var _ types.KV = (*Memory)(nil)

// Memory is a map-backed store. Its contents vanish on Close.
type Memory struct {
	mu     sync.RWMutex
	closed bool
	data   map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, types.ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	return cloneBytes(v), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrClosed
	}
	m.data[key] = cloneBytes(value)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Keys returns the sorted keys that start with prefix.
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, types.ErrClosed
	}
	return sortedKeys(m.data, prefix), nil
}

// Close drops the contents. Idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func sortedKeys(data map[string][]byte, prefix string) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
