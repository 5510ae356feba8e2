package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeByID(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		wantID    string
		wantFound bool
	}{
		{name: "known theme", id: "red-velvet", wantID: "red-velvet", wantFound: true},
		{name: "default theme", id: DefaultThemeID, wantID: DefaultThemeID, wantFound: true},
		{name: "empty falls back to default", id: "", wantID: DefaultThemeID},
		{name: "unknown falls back to default", id: "lemon", wantID: DefaultThemeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ThemeByID(tt.id)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestThemesReturnsCopy(t *testing.T) {
	list := Themes()
	assert.Len(t, list, 3)
	list[0].ID = "mutated"
	assert.NotEqual(t, "mutated", Themes()[0].ID)
}
