package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// LoadIndex returns the stored cakes index, or nil when it is absent,
// corrupt, or written by a newer schema version.
func (s *Store) LoadIndex() (*types.CakesIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, _, err := s.readIndexLocked()
	return idx, err
}

// SaveIndex overwrites the stored index. Last writer wins.
func (s *Store) SaveIndex(idx *types.CakesIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeIndexLocked(idx)
}

// UpdateIndex runs fn on the current index and stores what it returns, as one
// atomic read-modify-write. fn receives nil when no readable index exists.
// Returning a nil index skips the write. fn owns its argument and may mutate
// it. An index written by a newer schema version is never passed to fn; the
// call fails with ErrUnsupportedVersion instead.
func (s *Store) UpdateIndex(fn func(idx *types.CakesIndex) (*types.CakesIndex, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.updateIndexLocked(fn)
	return err
}

// updateIndexLocked is UpdateIndex for callers already holding s.mu. It
// returns the index that was written, or nil when the write was skipped.
func (s *Store) updateIndexLocked(fn func(idx *types.CakesIndex) (*types.CakesIndex, error)) (*types.CakesIndex, error) {
	idx, state, err := s.readIndexLocked()
	if err != nil {
		return nil, err
	}
	if state == indexUnsupported {
		return nil, fmt.Errorf("refusing to overwrite cakes index: %w", types.ErrUnsupportedVersion)
	}
	next, err := fn(idx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	if err := s.writeIndexLocked(next); err != nil {
		return nil, err
	}
	return next, nil
}

// readIndexLocked reads IndexKey. Decode problems are logged and reported
// through the state with a nil error; only backend failures return an error.
func (s *Store) readIndexLocked() (*types.CakesIndex, indexState, error) {
	raw, err := s.kv.Get(IndexKey)
	if errors.Is(err, types.ErrKeyNotFound) {
		return nil, indexAbsent, nil
	}
	if err != nil {
		return nil, indexAbsent, fmt.Errorf("reading cakes index: %w", err)
	}

	idx, state, err := decodeIndex(raw)
	if err != nil {
		s.log.Warn("failed to parse cakes index", zap.String("key", IndexKey), zap.Error(err))
		return nil, state, nil
	}
	return idx, state, nil
}

func (s *Store) writeIndexLocked(idx *types.CakesIndex) error {
	if idx == nil {
		return fmt.Errorf("saving cakes index: %w", types.ErrInvalidIndex)
	}
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("saving cakes index: %w", err)
	}
	raw, err := encodeIndex(idx)
	if err != nil {
		return fmt.Errorf("encoding cakes index: %w", err)
	}
	if err := s.kv.Set(IndexKey, raw); err != nil {
		return fmt.Errorf("writing cakes index: %w", err)
	}
	return nil
}

// readPointerLocked returns the last active cake ID, or "" when unset.
func (s *Store) readPointerLocked() (string, error) {
	raw, err := s.kv.Get(ActiveKey)
	if errors.Is(err, types.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active cake pointer: %w", err)
	}
	return string(raw), nil
}

func (s *Store) writePointerLocked(id string) error {
	if err := s.kv.Set(ActiveKey, []byte(id)); err != nil {
		return fmt.Errorf("writing active cake pointer: %w", err)
	}
	return nil
}

func (s *Store) clearPointerLocked() error {
	if err := s.kv.Delete(ActiveKey); err != nil {
		return fmt.Errorf("clearing active cake pointer: %w", err)
	}
	return nil
}
