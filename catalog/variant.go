package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Variant identifies a single style of a font family as discovered on
// the system. It is an immutable value: two Variants with equal fields
// are interchangeable.
type Variant struct {
	// Family is the font family name as reported by the platform.
	Family string

	// Style is the style name (e.g. "Regular", "Bold Italic").
	Style string

	// Weight is the numeric weight (400 = normal, 700 = bold).
	Weight int

	// Italic reports whether the variant is slanted.
	Italic bool

	// Path is the font file the variant was loaded from.
	Path string

	// Index is the face index inside a font collection file (.ttc).
	// Zero for plain .ttf/.otf files.
	Index int
}

// String returns "Family Style" for display lists.
func (v Variant) String() string {
	if v.Style == "" {
		return v.Family
	}
	return v.Family + " " + v.Style
}

// Key returns the deduplication key for the variant: the normalized
// (family, style) pair. Normalization trims surrounding whitespace and
// applies Unicode case folding, so "Arial"/"Regular" and
// "arial "/"REGULAR" collapse to the same key.
func (v Variant) Key() string {
	return normalize(v.Family) + "\x00" + normalize(v.Style)
}

// normalize lower-cases and trims a name for case-insensitive matching.
// A cases.Caser carries internal state and is not safe for concurrent
// use, so each call gets its own.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Entry groups the unique variants of one font family in discovery
// order. Entries are built during enumeration and never mutated once
// the catalog is frozen.
type Entry struct {
	// Family is the family name shared by all variants.
	Family string

	// Variants holds the unique variants, first-seen order.
	// Duplicates by Variant.Key were dropped during enumeration.
	Variants []Variant
}

// styleName derives a human-readable style name from weight and slant,
// mirroring the regular/bold/italic/bold-italic buckets font pickers
// usually show.
func styleName(weight int, italic bool) string {
	name := weightName(weight)
	if italic {
		if name == "Regular" {
			return "Italic"
		}
		return name + " Italic"
	}
	return name
}

// weightName maps a numeric weight to its conventional name.
func weightName(w int) string {
	switch {
	case w <= 150:
		return "Thin"
	case w <= 250:
		return "ExtraLight"
	case w <= 350:
		return "Light"
	case w <= 450:
		return "Regular"
	case w <= 550:
		return "Medium"
	case w <= 650:
		return "SemiBold"
	case w <= 750:
		return "Bold"
	case w <= 850:
		return "ExtraBold"
	default:
		return "Black"
	}
}
