package css

import (
	"strconv"
	"strings"
)

// IsCustomProperty returns true for custom property names ("--name").
func IsCustomProperty(name string) bool {
	return strings.HasPrefix(name, "--")
}

// PropertyName converts platform style property name (camelCase) into CSS
// property name. Custom properties are returned unchanged, names which are
// already hyphenated are kept, Microsoft vendor prefix gets its leading
// hyphen ("msTransition" -> "-ms-transition").
func PropertyName(name string) string {
	if IsCustomProperty(name) {
		return name
	}

	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for _, r := range name {
		if 'A' <= r && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}

	res := sb.String()
	if strings.HasPrefix(res, "ms-") {
		return "-" + res
	}
	return res
}

// unitless lists properties which accept plain numbers, numeric values for
// these are never suffixed.
var unitless = map[string]struct{}{
	"animation-iteration-count": {},
	"aspect-ratio":              {},
	"border-image-outset":       {},
	"border-image-slice":        {},
	"border-image-width":        {},
	"box-flex":                  {},
	"box-flex-group":            {},
	"box-ordinal-group":         {},
	"column-count":              {},
	"columns":                   {},
	"flex":                      {},
	"flex-grow":                 {},
	"flex-positive":             {},
	"flex-shrink":               {},
	"flex-negative":             {},
	"flex-order":                {},
	"font-weight":               {},
	"grid-area":                 {},
	"grid-column":               {},
	"grid-column-end":           {},
	"grid-column-span":          {},
	"grid-column-start":         {},
	"grid-row":                  {},
	"grid-row-end":              {},
	"grid-row-span":             {},
	"grid-row-start":            {},
	"initial-letter":            {},
	"line-clamp":                {},
	"line-height":               {},
	"math-depth":                {},
	"opacity":                   {},
	"order":                     {},
	"orphans":                   {},
	"scale":                     {},
	"tab-size":                  {},
	"widows":                    {},
	"z-index":                   {},
	"zoom":                      {},

	// SVG
	"fill-opacity":      {},
	"flood-opacity":     {},
	"stop-opacity":      {},
	"stroke-dasharray":  {},
	"stroke-dashoffset": {},
	"stroke-miterlimit": {},
	"stroke-opacity":    {},
	"stroke-width":      {},
}

// IsUnitless reports whether numeric values of property (CSS name) are written
// without unit. Vendor prefixed names are looked up without prefix.
func IsUnitless(property string) bool {
	if _, ok := unitless[property]; ok {
		return true
	}
	if !strings.HasPrefix(property, "-") || IsCustomProperty(property) {
		return false
	}
	// -webkit-line-clamp, -ms-flex-positive
	if _, rest, found := strings.Cut(property[1:], "-"); found {
		_, ok := unitless[rest]
		return ok
	}
	return false
}

// FormatNumber returns shortest decimal representation of v, suffixed with
// "px" unless property is unitless.
func FormatNumber(property string, v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if IsUnitless(property) {
		return s
	}
	return s + "px"
}
