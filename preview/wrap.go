package preview

import "strings"

// measureFunc returns the advance width in pixels of a string laid out
// in the face being rendered.
type measureFunc func(string) int

// wrapText breaks text into lines no wider than maxWidth, measured by
// measure. Breaks happen at word boundaries first; a single word wider
// than maxWidth falls back to rune boundaries so it cannot overflow
// the surface. Explicit newlines are honored.
func wrapText(text string, maxWidth int, measure measureFunc) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if measure(para) <= maxWidth {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(para, maxWidth, measure)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// wrapParagraph wraps a single newline-free paragraph.
func wrapParagraph(para string, maxWidth int, measure measureFunc) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(para) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if measure(word) <= maxWidth {
			current = word
			continue
		}
		// The word alone exceeds the width: rune-boundary fallback.
		broken := breakRunes(word, maxWidth, measure)
		lines = append(lines, broken[:len(broken)-1]...)
		current = broken[len(broken)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// breakRunes splits an over-wide word at rune boundaries. Always
// returns at least one piece; a piece keeps at least one rune even if
// that rune alone is wider than maxWidth.
func breakRunes(word string, maxWidth int, measure measureFunc) []string {
	var pieces []string
	current := ""
	for _, r := range word {
		candidate := current + string(r)
		if current != "" && measure(candidate) > maxWidth {
			pieces = append(pieces, current)
			current = string(r)
			continue
		}
		current = candidate
	}
	pieces = append(pieces, current)
	return pieces
}
