package kv

import (
	"fmt"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// Open validates cfg and opens the named backend.
func Open(cfg types.Config) (types.KV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		s   types.KV
		err error
	)
	// A failed open returns a nil interface, never a typed nil.
	switch cfg.Backend {
	case types.BackendMemory:
		return NewMemory(), nil
	case types.BackendJSONL:
		var j *JSONL
		if j, err = OpenJSONL(cfg.DataDir); err == nil {
			s = j
		}
	case types.BackendSQLite:
		var q *SQLite
		if q, err = OpenSQLite(cfg.DataDir); err == nil {
			s = q
		}
	case types.BackendPebble:
		var p *Pebble
		if p, err = OpenPebble(cfg.DataDir); err == nil {
			s = p
		}
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
