package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cake/pkg/placement"
	"github.com/mesh-intelligence/cake/pkg/types"
)

// Placer chooses a position for a new pick. *placement.Placer satisfies it.
type Placer interface {
	Place(existing []types.Pick, text string) types.Pick
}

// LoadCakePicks returns the picks of cake id in stored order. An absent or
// corrupt record yields an empty, non-nil slice. Individual picks that fail
// validation are dropped with a warning.
func (s *Store) LoadCakePicks(id string) ([]types.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPicksLocked(id)
}

// SaveCakePicks overwrites the picks of cake id wholesale.
// Returns an error wrapping ErrInvalidPick (or a text error) if any pick
// fails validation; nothing is written in that case.
func (s *Store) SaveCakePicks(id string, picks []types.Pick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.savePicksLocked(id, picks)
}

// AddPick places a new pick labeled text on cake cakeID, saves the pick list
// and touches the cake. A nil placer uses a randomly seeded
// placement.Placer. An empty cakeID is a no-op returning nil.
// Returns ErrInvalidText or ErrTextTooLong for a bad label and ErrNotFound
// when the cake is not in the index.
func (s *Store) AddPick(cakeID, text string, placer Placer) (*types.Pick, error) {
	if cakeID == "" {
		return nil, nil
	}
	text, err := types.NormalizeText(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCakeLocked(cakeID); err != nil {
		return nil, err
	}
	picks, err := s.loadPicksLocked(cakeID)
	if err != nil {
		return nil, err
	}
	if placer == nil {
		placer = placement.New(nil)
	}
	p := placer.Place(picks, text)
	picks = append(picks, p)
	if err := s.commitPicksLocked(cakeID, picks); err != nil {
		return nil, err
	}
	s.log.Debug("added pick", zap.String("cake", cakeID), zap.String("pick", p.ID))
	return &p, nil
}

// EditPick replaces the label of pick pickID on cake cakeID.
// Returns ErrNotFound when the cake or pick does not exist.
func (s *Store) EditPick(cakeID, pickID, text string) error {
	if cakeID == "" {
		return nil
	}
	text, err := types.NormalizeText(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCakeLocked(cakeID); err != nil {
		return err
	}
	picks, err := s.loadPicksLocked(cakeID)
	if err != nil {
		return err
	}
	i := types.IndexOfPick(picks, pickID)
	if i < 0 {
		return fmt.Errorf("pick %s: %w", pickID, types.ErrNotFound)
	}
	picks[i].Text = text
	return s.commitPicksLocked(cakeID, picks)
}

// DeletePick removes pick pickID from cake cakeID.
// Returns ErrNotFound when the cake or pick does not exist.
func (s *Store) DeletePick(cakeID, pickID string) error {
	if cakeID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCakeLocked(cakeID); err != nil {
		return err
	}
	picks, err := s.loadPicksLocked(cakeID)
	if err != nil {
		return err
	}
	i := types.IndexOfPick(picks, pickID)
	if i < 0 {
		return fmt.Errorf("pick %s: %w", pickID, types.ErrNotFound)
	}
	picks = append(picks[:i], picks[i+1:]...)
	return s.commitPicksLocked(cakeID, picks)
}

// ReplacePicks overwrites the picks of cake cakeID and touches the cake.
// This is the import-overwrite path. An empty cakeID is a no-op.
func (s *Store) ReplacePicks(cakeID string, picks []types.Pick) error {
	if cakeID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireCakeLocked(cakeID); err != nil {
		return err
	}
	return s.commitPicksLocked(cakeID, picks)
}

// commitPicksLocked saves picks and touches the cake's updatedAt.
func (s *Store) commitPicksLocked(cakeID string, picks []types.Pick) error {
	if err := s.savePicksLocked(cakeID, picks); err != nil {
		return err
	}
	return s.touchLocked(cakeID)
}

func (s *Store) requireCakeLocked(cakeID string) error {
	idx, _, err := s.readIndexLocked()
	if err != nil {
		return err
	}
	if meta, _ := idx.Find(cakeID); meta == nil {
		return fmt.Errorf("cake %s: %w", cakeID, types.ErrNotFound)
	}
	return nil
}

func (s *Store) loadPicksLocked(id string) ([]types.Pick, error) {
	key := CakeKey(id)
	raw, err := s.kv.Get(key)
	if errors.Is(err, types.ErrKeyNotFound) {
		return []types.Pick{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cake picks: %w", err)
	}

	picks, skipped, err := decodePicks(raw)
	if err != nil {
		s.log.Warn("failed to parse cake picks", zap.String("key", key), zap.Error(err))
		return []types.Pick{}, nil
	}
	if skipped > 0 {
		s.log.Warn("dropped invalid picks", zap.String("key", key), zap.Int("count", skipped))
	}
	return picks, nil
}

func (s *Store) savePicksLocked(id string, picks []types.Pick) error {
	for _, p := range picks {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pick %q: %w", p.ID, err)
		}
	}
	raw, err := encodePicks(picks)
	if err != nil {
		return fmt.Errorf("encoding cake picks: %w", err)
	}
	if err := s.kv.Set(CakeKey(id), raw); err != nil {
		return fmt.Errorf("writing cake picks: %w", err)
	}
	return nil
}
