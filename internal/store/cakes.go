package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// Created describes the outcome of CreateNewCake and DuplicateCake.
type Created struct {
	ID    string
	Meta  types.CakeMeta
	Index *types.CakesIndex
}

// CreateNewCake creates a cake holding initialPicks, appends it to the index
// (starting a new index when none exists), makes it active, and records it
// as the last active cake. An empty themeID selects DefaultThemeID.
// Returns ErrInvalidName when name is blank after trimming.
func (s *Store) CreateNewCake(name string, initialPicks []types.Pick, themeID string) (*Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(name, initialPicks, themeID)
}

func (s *Store) createLocked(name string, initialPicks []types.Pick, themeID string) (*Created, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if themeID == "" {
		themeID = types.DefaultThemeID
	}

	now := s.now()
	meta := types.CakeMeta{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		ThemeID:   themeID,
	}

	var written *types.CakesIndex
	_, err := s.updateIndexLocked(func(idx *types.CakesIndex) (*types.CakesIndex, error) {
		if idx == nil {
			idx = &types.CakesIndex{}
		}
		idx.Cakes = append(idx.Cakes, meta)
		idx.ActiveID = meta.ID
		written = idx
		// Picks first so the index never names a cake without a picks record.
		if err := s.savePicksLocked(meta.ID, initialPicks); err != nil {
			return nil, err
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.writePointerLocked(meta.ID); err != nil {
		return nil, err
	}

	s.log.Debug("created cake", zap.String("id", meta.ID), zap.String("name", name))
	return &Created{ID: meta.ID, Meta: meta, Index: written.Clone()}, nil
}

// SetActiveCake makes id the active cake and records it as the last active
// cake. It is a no-op when no index exists or id is empty; id is not checked
// against the index.
func (s *Store) SetActiveCake(id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	written, err := s.updateIndexLocked(func(idx *types.CakesIndex) (*types.CakesIndex, error) {
		if idx == nil {
			return nil, nil
		}
		idx.ActiveID = id
		return idx, nil
	})
	if err != nil || written == nil {
		return err
	}
	return s.writePointerLocked(id)
}

// GetActiveCakeID returns the index's active cake, falling back to the last
// active pointer when the index is missing, unreadable, or has no active
// cake. Returns "" when neither is set.
func (s *Store) GetActiveCakeID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeIDLocked()
}

func (s *Store) activeIDLocked() (string, error) {
	idx, _, err := s.readIndexLocked()
	if err != nil {
		return "", err
	}
	if idx != nil && idx.ActiveID != "" {
		return idx.ActiveID, nil
	}
	return s.readPointerLocked()
}

// Cake returns the metadata of cake id.
// Returns ErrNotFound when there is no index or no such cake.
func (s *Store) Cake(id string) (*types.CakeMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, _, err := s.readIndexLocked()
	if err != nil {
		return nil, err
	}
	meta, _ := idx.Find(id)
	if meta == nil {
		return nil, fmt.Errorf("cake %s: %w", id, types.ErrNotFound)
	}
	out := *meta
	return &out, nil
}

// UpdateCakeMetaName renames cake id. No-op when the cake is missing.
// Returns ErrInvalidName when name is blank after trimming.
func (s *Store) UpdateCakeMetaName(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ErrInvalidName
	}
	return s.mutateCake(id, func(meta *types.CakeMeta) {
		meta.Name = name
	})
}

// UpdateCakeTheme sets the theme of cake id. No-op when the cake is missing.
// An empty themeID selects DefaultThemeID.
func (s *Store) UpdateCakeTheme(id, themeID string) error {
	if themeID == "" {
		themeID = types.DefaultThemeID
	}
	return s.mutateCake(id, func(meta *types.CakeMeta) {
		meta.ThemeID = themeID
	})
}

// TouchCakeUpdated bumps the updatedAt of cake id. No-op when the cake is
// missing.
func (s *Store) TouchCakeUpdated(id string) error {
	return s.mutateCake(id, func(*types.CakeMeta) {})
}

func (s *Store) mutateCake(id string, fn func(meta *types.CakeMeta)) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateCakeLocked(id, fn)
}

func (s *Store) mutateCakeLocked(id string, fn func(meta *types.CakeMeta)) error {
	_, err := s.updateIndexLocked(func(idx *types.CakesIndex) (*types.CakesIndex, error) {
		meta, _ := idx.Find(id)
		if meta == nil {
			return nil, nil
		}
		fn(meta)
		meta.UpdatedAt = s.now()
		return idx, nil
	})
	return err
}

func (s *Store) touchLocked(id string) error {
	return s.mutateCakeLocked(id, func(*types.CakeMeta) {})
}

// DeleteCake removes cake id from the index and deletes its picks. When the
// deleted cake was active, the first remaining cake becomes active, or none
// when the index is left empty. The last active pointer follows the new
// active cake. It is cleared only when it would otherwise name the deleted
// cake, so a deleted ID is never reported by GetActiveCakeID and a pointer
// to a live cake survives. Returns the new index, or nil when no index
// exists.
func (s *Store) DeleteCake(id string) (*types.CakesIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wasActive bool
	written, err := s.updateIndexLocked(func(idx *types.CakesIndex) (*types.CakesIndex, error) {
		if idx == nil {
			return nil, nil
		}
		wasActive = id != "" && idx.ActiveID == id
		remaining := make([]types.CakeMeta, 0, len(idx.Cakes))
		for _, c := range idx.Cakes {
			if c.ID != id {
				remaining = append(remaining, c)
			}
		}
		active := idx.ActiveID
		if wasActive {
			active = ""
			if len(remaining) > 0 {
				active = remaining[0].ID
			}
		}
		return &types.CakesIndex{Cakes: remaining, ActiveID: active}, nil
	})
	if err != nil || written == nil {
		return nil, err
	}

	if err := s.kv.Delete(CakeKey(id)); err != nil {
		return nil, fmt.Errorf("deleting cake picks: %w", err)
	}
	if err := s.followPointerLocked(id, written.ActiveID, wasActive); err != nil {
		return nil, err
	}

	s.log.Debug("deleted cake", zap.String("id", id), zap.String("active", written.ActiveID))
	return written.Clone(), nil
}

// followPointerLocked updates the last active pointer after cake deleted was
// removed from the index.
func (s *Store) followPointerLocked(deleted, active string, wasActive bool) error {
	if active != "" {
		return s.writePointerLocked(active)
	}
	if wasActive {
		return s.clearPointerLocked()
	}
	pointer, err := s.readPointerLocked()
	if err != nil {
		return err
	}
	if pointer == deleted {
		return s.clearPointerLocked()
	}
	return nil
}

// DuplicateCake creates an independent copy of cake id with the same theme
// and a copy of its picks. An empty newName gives "Copy of <name>".
// Returns ErrNotFound when there is no index or no such cake.
func (s *Store) DuplicateCake(id, newName string) (*Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, state, err := s.readIndexLocked()
	if err != nil {
		return nil, err
	}
	if state == indexUnsupported {
		return nil, types.ErrUnsupportedVersion
	}
	src, _ := idx.Find(id)
	if src == nil {
		return nil, fmt.Errorf("cake %s: %w", id, types.ErrNotFound)
	}

	// loadPicksLocked decodes a fresh slice, so the copy shares nothing with
	// the source record.
	picks, err := s.loadPicksLocked(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		name = "Copy of " + src.Name
	}
	return s.createLocked(name, picks, src.ThemeID)
}
