package schema

import "sort"

// ColorToken labels the highlight category of a content card.
type ColorToken string

const (
	// ColorGreen marks a green highlight.
	ColorGreen ColorToken = "green"
	// ColorYellow marks a yellow highlight.
	ColorYellow ColorToken = "yellow"
	// ColorRed marks a red highlight.
	ColorRed ColorToken = "red"
	// ColorGray marks a gray highlight and doubles as the bucket for cards
	// whose highlight carries no recognizable color.
	ColorGray ColorToken = "gray"
)

// Palette returns the closed set of selectable color tokens in display order.
func Palette() []ColorToken {
	return []ColorToken{ColorGreen, ColorYellow, ColorRed, ColorGray}
}

// Known reports whether the token belongs to the palette.
func (t ColorToken) Known() bool {
	switch t {
	case ColorGreen, ColorYellow, ColorRed, ColorGray:
		return true
	}
	return false
}

// Selection is the user's inclusion filter over the palette. An empty
// selection means no filter is active.
type Selection map[ColorToken]struct{}

// NewSelection builds a selection from the given tokens.
func NewSelection(tokens ...ColorToken) Selection {
	sel := make(Selection, len(tokens))
	for _, token := range tokens {
		sel[token] = struct{}{}
	}
	return sel
}

// Has reports whether the token is selected.
func (s Selection) Has(token ColorToken) bool {
	_, ok := s[token]
	return ok
}

// Empty reports whether no tokens are selected.
func (s Selection) Empty() bool {
	return len(s) == 0
}

// Set adds or removes the token.
func (s Selection) Set(token ColorToken, enabled bool) {
	if enabled {
		s[token] = struct{}{}
		return
	}
	delete(s, token)
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for token := range s {
		out[token] = struct{}{}
	}
	return out
}

// Tokens returns the selected tokens sorted lexically.
func (s Selection) Tokens() []ColorToken {
	out := make([]ColorToken, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both selections contain the same tokens.
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for token := range s {
		if !other.Has(token) {
			return false
		}
	}
	return true
}

// CardID identifies a content card annotated by the overlay.
type CardID string

// Card is one enumerated content card with the attributes the engine reads.
type Card struct {
	ID CardID `json:"id"`
	// HasHighlight reports whether the card carries a highlight sub-element.
	// Cards without one keep their current display untouched.
	HasHighlight bool `json:"hasHighlight"`
	// HighlightStyle is the highlight sub-element's inline style text.
	HighlightStyle string `json:"highlightStyle,omitempty"`
	// StatusText is the status sub-element's text, empty when absent.
	StatusText string `json:"statusText,omitempty"`
}
