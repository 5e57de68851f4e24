package core

import (
	"regexp"
	"strings"

	"github.com/DanSleeman/anichart-filter/schema"
)

// highlightPattern captures the trailing color identifier of the host page's
// highlight style, e.g. "background: var(--color-green)".
var highlightPattern = regexp.MustCompile(`var\(--color-([a-z]+)\)`)

// ParseHighlightColor extracts the color token from a highlight element's
// inline style. ok is false when the style carries no color identifier.
func ParseHighlightColor(style string) (schema.ColorToken, bool) {
	match := highlightPattern.FindStringSubmatch(style)
	if match == nil {
		return "", false
	}
	return schema.ColorToken(match[1]), true
}

// ShouldShow decides card visibility against the selection. An empty
// selection shows everything. A card whose highlight has no recognizable
// color falls into the gray bucket.
func ShouldShow(color schema.ColorToken, hasColor bool, sel schema.Selection) bool {
	if sel.Empty() {
		return true
	}
	if !hasColor || !color.Known() {
		return sel.Has(schema.ColorGray)
	}
	return sel.Has(color)
}

// AiredMarker reports whether the status text indicates an aired entry. The
// marker is recomputed every refresh so it never goes stale.
func AiredMarker(status string) bool {
	return strings.Contains(strings.ToLower(status), "aired")
}
