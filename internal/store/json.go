package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// SchemaVersion is the newest index record version this package reads and
// writes. Records without a version field are version 1.
const SchemaVersion = 1

// indexJSON is the stored form of types.CakesIndex.
type indexJSON struct {
	Version  int            `json:"version,omitempty"`
	Cakes    []cakeMetaJSON `json:"cakes"`
	ActiveID *string        `json:"activeId"`
}

// cakeMetaJSON is the stored form of types.CakeMeta. Timestamps are epoch
// milliseconds.
type cakeMetaJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	ThemeID   string `json:"themeId"`
}

// indexState classifies what was found under IndexKey.
type indexState int

const (
	indexAbsent indexState = iota
	indexOK
	indexCorrupt
	indexUnsupported
)

func encodeIndex(idx *types.CakesIndex) ([]byte, error) {
	rec := indexJSON{
		Version: SchemaVersion,
		Cakes:   make([]cakeMetaJSON, len(idx.Cakes)),
	}
	for i, c := range idx.Cakes {
		rec.Cakes[i] = cakeMetaJSON{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt.UnixMilli(),
			UpdatedAt: c.UpdatedAt.UnixMilli(),
			ThemeID:   c.ThemeID,
		}
	}
	if idx.ActiveID != "" {
		active := idx.ActiveID
		rec.ActiveID = &active
	}
	return json.Marshal(rec)
}

// decodeIndex parses and validates a stored index. The returned state is
// indexOK only when err is nil.
func decodeIndex(raw []byte) (*types.CakesIndex, indexState, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, indexAbsent, nil
	}

	var rec indexJSON
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, indexCorrupt, fmt.Errorf("parsing cakes index: %w", err)
	}
	if rec.Version > SchemaVersion {
		return nil, indexUnsupported, fmt.Errorf("%w: cakes index version %d", types.ErrUnsupportedVersion, rec.Version)
	}

	idx := &types.CakesIndex{Cakes: make([]types.CakeMeta, len(rec.Cakes))}
	for i, c := range rec.Cakes {
		idx.Cakes[i] = types.CakeMeta{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: time.UnixMilli(c.CreatedAt),
			UpdatedAt: time.UnixMilli(c.UpdatedAt),
			ThemeID:   c.ThemeID,
		}
	}
	if rec.ActiveID != nil {
		idx.ActiveID = *rec.ActiveID
	}
	if err := idx.Validate(); err != nil {
		return nil, indexCorrupt, err
	}
	return idx, indexOK, nil
}

func encodePicks(picks []types.Pick) ([]byte, error) {
	if picks == nil {
		picks = []types.Pick{}
	}
	return json.Marshal(picks)
}

// decodePicks parses a stored pick list. Picks that fail validation are
// returned in skipped and left out of the result.
func decodePicks(raw []byte) (picks []types.Pick, skipped int, err error) {
	var all []types.Pick
	if err := json.Unmarshal(raw, &all); err != nil {
		return []types.Pick{}, 0, fmt.Errorf("parsing cake picks: %w", err)
	}
	picks = make([]types.Pick, 0, len(all))
	for _, p := range all {
		if p.Validate() != nil {
			skipped++
			continue
		}
		picks = append(picks, p)
	}
	return picks, skipped, nil
}
