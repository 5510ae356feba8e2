package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// DefaultCakeName returns the name given to the first cake of a fresh store.
func DefaultCakeName(year int) string {
	return fmt.Sprintf("My %d Wins", year)
}

// Bootstrap prepares the store for first use. When no readable index
// exists it creates an empty cake named for the current year and returns it
// with created set. Otherwise it returns the active cake ID (see
// GetActiveCakeID), which may be "".
func (s *Store) Bootstrap() (activeID string, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, state, err := s.readIndexLocked()
	if err != nil {
		return "", false, err
	}
	if state == indexUnsupported {
		return "", false, types.ErrUnsupportedVersion
	}
	if idx != nil {
		id, err := s.activeIDLocked()
		return id, false, err
	}

	c, err := s.createLocked(DefaultCakeName(s.now().Year()), nil, types.DefaultThemeID)
	if err != nil {
		return "", false, err
	}
	s.log.Info("created default cake", zap.String("id", c.ID), zap.String("name", c.Meta.Name))
	return c.ID, true, nil
}

// Orphans returns the IDs of cakes whose picks record exists but which the
// index does not list. The relationship between the two key families is
// kept by convention only, so interrupted writes or older clients can leave
// such records behind. Returns ErrInvalidIndex when the index is present but
// unreadable, since every record would look orphaned.
func (s *Store) Orphans() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orphansLocked()
}

// Prune deletes the picks records reported by Orphans and returns their
// cake IDs.
func (s *Store) Prune() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orphans, err := s.orphansLocked()
	if err != nil {
		return nil, err
	}
	for _, id := range orphans {
		if err := s.kv.Delete(CakeKey(id)); err != nil {
			return nil, fmt.Errorf("pruning cake %s: %w", id, err)
		}
		s.log.Debug("pruned orphan picks", zap.String("id", id))
	}
	return orphans, nil
}

func (s *Store) orphansLocked() ([]string, error) {
	idx, state, err := s.readIndexLocked()
	if err != nil {
		return nil, err
	}
	switch state {
	case indexCorrupt:
		return nil, types.ErrInvalidIndex
	case indexUnsupported:
		return nil, types.ErrUnsupportedVersion
	}

	keys, err := s.kv.Keys(cakeKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing cake keys: %w", err)
	}
	orphans := []string{}
	for _, k := range keys {
		id, ok := cakeIDFromKey(k)
		if !ok {
			continue
		}
		if meta, _ := idx.Find(id); meta == nil {
			orphans = append(orphans, id)
		}
	}
	return orphans, nil
}
