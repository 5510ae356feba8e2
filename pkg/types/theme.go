package types

// Theme identifies a scene theme. Color tables belong to the renderer.
type Theme struct {
	ID    string
	Label string
}

// DefaultThemeID is the theme given to cakes created without one.
const DefaultThemeID = "chocolate"

var themes = []Theme{
	{ID: "vanilla", Label: "Vanilla Minimal"},
	{ID: "chocolate", Label: "Chocolate"},
	{ID: "red-velvet", Label: "Red Velvet"},
}

// Themes returns the known themes in display order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ThemeByID returns the theme with the given ID, falling back to the default
// theme when id is empty or unknown. The boolean reports whether id matched.
func ThemeByID(id string) (Theme, bool) {
	var fallback Theme
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
		if t.ID == DefaultThemeID {
			fallback = t
		}
	}
	return fallback, false
}
