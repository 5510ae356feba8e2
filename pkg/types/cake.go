package types

import "time"

// CakeMeta describes one saved cake. Its picks live under a separate key
// joined only by ID.
type CakeMeta struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	ThemeID   string
}

// CakesIndex is the directory of saved cakes. When ActiveID is non-empty it
// normally names a cake in Cakes; an empty ActiveID means no cake is active.
type CakesIndex struct {
	Cakes    []CakeMeta
	ActiveID string
}

// Find returns the cake with the given ID and its position, or nil and -1.
func (idx *CakesIndex) Find(id string) (*CakeMeta, int) {
	if idx == nil {
		return nil, -1
	}
	for i := range idx.Cakes {
		if idx.Cakes[i].ID == id {
			return &idx.Cakes[i], i
		}
	}
	return nil, -1
}

// Validate checks that every cake has an ID and that IDs are unique.
// It returns ErrInvalidIndex on failure.
func (idx *CakesIndex) Validate() error {
	seen := make(map[string]bool, len(idx.Cakes))
	for _, c := range idx.Cakes {
		if c.ID == "" || seen[c.ID] {
			return ErrInvalidIndex
		}
		seen[c.ID] = true
	}
	return nil
}

// Clone returns a deep copy of the index.
func (idx *CakesIndex) Clone() *CakesIndex {
	if idx == nil {
		return nil
	}
	out := &CakesIndex{ActiveID: idx.ActiveID, Cakes: make([]CakeMeta, len(idx.Cakes))}
	copy(out.Cakes, idx.Cakes)
	return out
}
