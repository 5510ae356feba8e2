package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cake/internal/store"
	"github.com/mesh-intelligence/cake/pkg/types"
)

var errNoActiveCake = errors.New("no active cake; run \"cake init\" or \"cake new <name>\"")

// cakeView is the JSON form of a cake in command output.
type cakeView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ThemeID   string `json:"themeId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Active    bool   `json:"active"`
	Picks     *int   `json:"picks,omitempty"`
}

func newCakeView(meta types.CakeMeta, activeID string) cakeView {
	return cakeView{
		ID:        meta.ID,
		Name:      meta.Name,
		ThemeID:   meta.ThemeID,
		CreatedAt: meta.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: meta.UpdatedAt.UTC().Format(time.RFC3339),
		Active:    meta.ID == activeID,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// targetCake returns the cake named by the --cake flag, or the active cake
// when the flag is empty. The cake must exist in the index.
func targetCake(s *store.Store, flag string) (*types.CakeMeta, error) {
	id := flag
	if id == "" {
		active, err := s.GetActiveCakeID()
		if err != nil {
			return nil, classify(err)
		}
		if active == "" {
			return nil, userError(errNoActiveCake)
		}
		id = active
	}
	meta, err := s.Cake(id)
	if err != nil {
		return nil, classify(err)
	}
	return meta, nil
}

// resolveTheme checks a theme id given on the command line.
func resolveTheme(id string) (string, error) {
	if _, ok := types.ThemeByID(id); !ok {
		return "", userError(fmt.Errorf("unknown theme %q", id))
	}
	return id, nil
}
