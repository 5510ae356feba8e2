// Package transfer encodes cakes to and from the portable JSON document
// used for export and import, and derives export filenames.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/cake/pkg/placement"
	"github.com/mesh-intelligence/cake/pkg/types"
)

// DefaultName is used for exports of cakes without a name.
const DefaultName = "cake"

// Document is the export file format.
type Document struct {
	Name  string       `json:"name"`
	Picks []types.Pick `json:"picks"`
}

// importDocument is the wrapped import shape. Picks stays raw so that a
// missing field can be told apart from an empty list.
type importDocument struct {
	Name  any             `json:"name"`
	Picks json.RawMessage `json:"picks"`
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w-]`)
)

// ParseImport decodes an import file. Both the wrapped {"name","picks"}
// document and a bare array of picks are accepted. A missing or empty name
// becomes "Imported <now in RFC 3339>". Picks without an id get a fresh one,
// a zero height becomes placement.PickHeight, and text is trimmed.
//
// Returns an error wrapping ErrMalformedImport when data is not one of the
// two shapes, and one wrapping ErrInvalidPick when a pick cannot be stored.
func ParseImport(data []byte, now time.Time) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", types.ErrMalformedImport)
	}

	var (
		name     string
		rawPicks json.RawMessage
	)
	switch trimmed[0] {
	case '[':
		rawPicks = trimmed
	case '{':
		var doc importDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedImport, err)
		}
		if len(doc.Picks) == 0 {
			return nil, fmt.Errorf("%w: missing picks", types.ErrMalformedImport)
		}
		if s, ok := doc.Name.(string); ok {
			name = s
		}
		rawPicks = doc.Picks
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", types.ErrMalformedImport)
	}

	var picks []types.Pick
	if err := json.Unmarshal(rawPicks, &picks); err != nil {
		return nil, fmt.Errorf("%w: picks: %v", types.ErrMalformedImport, err)
	}
	if picks == nil {
		return nil, fmt.Errorf("%w: picks must be an array", types.ErrMalformedImport)
	}

	for i := range picks {
		if err := normalizePick(&picks[i]); err != nil {
			return nil, fmt.Errorf("%w: pick %d: %w", types.ErrInvalidPick, i, err)
		}
	}

	if name == "" {
		name = "Imported " + now.UTC().Format(time.RFC3339)
	}
	return &Document{Name: name, Picks: picks}, nil
}

func normalizePick(p *types.Pick) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Height == 0 {
		p.Height = placement.PickHeight
	}
	text, err := types.NormalizeText(p.Text)
	if err != nil {
		return err
	}
	p.Text = text
	return p.Validate()
}

// ExportJSON encodes a cake as an indented Document and returns the file
// name to save it under. An empty name is exported as DefaultName.
func ExportJSON(name string, picks []types.Pick) (filename string, data []byte, err error) {
	if name == "" {
		name = DefaultName
	}
	if picks == nil {
		picks = []types.Pick{}
	}
	data, err = json.MarshalIndent(Document{Name: name, Picks: picks}, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encoding export: %w", err)
	}
	return JSONFilename(name), data, nil
}

// JSONFilename returns the export file name for a cake: whitespace runs
// become underscores and ".cake.json" is appended.
func JSONFilename(name string) string {
	if name == "" {
		name = DefaultName
	}
	return whitespaceRun.ReplaceAllString(name, "_") + ".cake.json"
}

// PNGFilename returns the snapshot file name for a cake: every character
// other than letters, digits, underscore and hyphen becomes an underscore.
func PNGFilename(name string) string {
	if name == "" {
		name = DefaultName
	}
	return nonWord.ReplaceAllString(name, "_") + ".png"
}
