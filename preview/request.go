package preview

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/gogpu/fontview/catalog"
)

// Point size bounds accepted for previews. Requests outside the range
// are rejected before any render work happens.
const (
	MinPointSize = 8
	MaxPointSize = 72
)

// DefaultWrapWidth is the wrap width used when a request leaves
// WrapWidth at zero.
const DefaultWrapWidth = 600

var (
	// ErrSizeOutOfRange reports a point size outside [MinPointSize, MaxPointSize].
	ErrSizeOutOfRange = errors.New("preview: point size out of range")

	// ErrNoVariant reports a request without a font variant.
	ErrNoVariant = errors.New("preview: request has no font variant")
)

// Request describes one preview to render. It is a comparable value
// type: two requests with equal fields are interchangeable and map to
// the same cache entry.
type Request struct {
	// Variant is the font to preview.
	Variant catalog.Variant

	// Size is the point size, within [MinPointSize, MaxPointSize].
	Size float64

	// Weight overrides the variant's weight when non-zero.
	// Values of 600 and above produce a bold rendering even for
	// non-bold faces.
	Weight int

	// Color is the fill color for the whole sample.
	Color color.RGBA

	// Text is the sample text. Lines wrap at word boundaries against
	// WrapWidth.
	Text string

	// WrapWidth is the wrap width in pixels. Zero means
	// DefaultWrapWidth.
	WrapWidth int
}

// Validate checks the request bounds.
func (r Request) Validate() error {
	if r.Variant == (catalog.Variant{}) {
		return ErrNoVariant
	}
	if r.Size < MinPointSize || r.Size > MaxPointSize {
		return ErrSizeOutOfRange
	}
	return nil
}

// wrapWidth returns the effective wrap width.
func (r Request) wrapWidth() int {
	if r.WrapWidth <= 0 {
		return DefaultWrapWidth
	}
	return r.WrapWidth
}

// bold reports whether the rendering should be emboldened: either the
// variant itself is bold or the override asks for it.
func (r Request) bold() bool {
	w := r.Weight
	if w == 0 {
		w = r.Variant.Weight
	}
	return w >= 600
}

// Key returns a stable string fingerprint of the request, including
// every field that affects the rendered output. Used as the
// single-flight key for in-flight render deduplication.
func (r Request) Key() string {
	b := make([]byte, 0, 128)
	b = append(b, r.Variant.Path...)
	b = append(b, 0)
	b = strconv.AppendInt(b, int64(r.Variant.Index), 10)
	b = append(b, 0)
	b = append(b, r.Variant.Family...)
	b = append(b, 0)
	b = append(b, r.Variant.Style...)
	b = append(b, 0)
	b = strconv.AppendInt(b, int64(r.Variant.Weight), 10)
	if r.Variant.Italic {
		b = append(b, 'i')
	}
	b = append(b, 0)
	// Bit pattern ensures exact matching without floating-point issues.
	b = strconv.AppendUint(b, math.Float64bits(r.Size), 16)
	b = append(b, 0)
	b = strconv.AppendInt(b, int64(r.Weight), 10)
	b = append(b, 0)
	b = append(b, r.Color.R, r.Color.G, r.Color.B, r.Color.A, 0)
	b = strconv.AppendInt(b, int64(r.wrapWidth()), 10)
	b = append(b, 0)
	b = append(b, r.Text...)
	return string(b)
}

// Result is a rendered preview. It is a value type; the Image pointer
// is shared between the cache and every delivered copy and must be
// treated as read-only.
type Result struct {
	// Variant is the font the preview was rendered with.
	Variant catalog.Variant

	// Image is the rendered surface. Never nil for a successful
	// render; a sample with no renderable glyphs yields a blank
	// surface rather than an error.
	Image *image.RGBA

	// Extent is the measured size of the laid-out text, which can be
	// smaller than the image bounds.
	Extent image.Point

	// Generation tags the parameter generation the result was
	// delivered for. Zero inside the cache; the coordinator stamps
	// delivered copies.
	Generation uint64
}
