package types

import (
	"math"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest pick label, counted in characters.
const MaxTextLength = 60

// Pick is a labeled flag planted in a cake. Position is polar on the cake
// top: Angle in radians, Radius from the center. Height is the constant
// planting height. A pick belongs to exactly one cake.
type Pick struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

// NormalizeText trims surrounding whitespace from a pick label.
// Returns ErrInvalidText if nothing remains and ErrTextTooLong if the label
// exceeds MaxTextLength characters.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrInvalidText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

// Validate checks that the pick can be stored. Position values must be
// finite; range is not enforced so that picks from older exports still load.
func (p Pick) Validate() error {
	if p.ID == "" {
		return ErrInvalidPick
	}
	if _, err := NormalizeText(p.Text); err != nil {
		return err
	}
	for _, v := range []float64{p.Angle, p.Radius, p.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidPick
		}
	}
	return nil
}

// IndexOfPick returns the position of the pick with the given ID, or -1.
func IndexOfPick(picks []Pick, id string) int {
	for i := range picks {
		if picks[i].ID == id {
			return i
		}
	}
	return -1
}
