package preview

import (
	"fmt"
	"image"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Renderer rasterizes one preview request into a surface.
// Render is CPU-bound; the cache calls it at most once per distinct
// request. Implementations must be safe for concurrent use.
type Renderer interface {
	Render(Request) (Result, error)
}

// fontKey addresses one face inside a font file.
type fontKey struct {
	path  string
	index int
}

// ImageRenderer rasterizes previews with golang.org/x/image. Parsed
// fonts are cached per file so slider-driven re-renders of the same
// variant do not re-read and re-parse the font.
//
// ImageRenderer is safe for concurrent use.
type ImageRenderer struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

// NewImageRenderer creates a renderer with an empty font cache.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{fonts: make(map[fontKey]*opentype.Font)}
}

// Render implements the Renderer interface.
//
// The sample wraps at word boundaries against the request's wrap
// width. Color and weight apply to the whole sample. A sample the face
// has no glyphs for produces a valid blank surface, not an error; only
// unreadable or unparseable font files fail.
func (ir *ImageRenderer) Render(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	f, err := ir.font(req.Variant.Path, req.Variant.Index)
	if err != nil {
		return Result{}, err
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    req.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return Result{}, fmt.Errorf("preview: creating face for %q: %w", req.Variant, err)
	}
	defer func() {
		_ = face.Close()
	}()

	measure := func(s string) int {
		return font.MeasureString(face, s).Ceil()
	}

	width := req.wrapWidth()
	lines := wrapText(req.Text, width, measure)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = int(req.Size)
	}
	ascent := metrics.Ascent.Ceil()
	height := lineHeight * len(lines)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(req.Color),
		Face: face,
	}

	syntheticBold := req.bold() && req.Variant.Weight < 600
	maxLine := 0
	for i, line := range lines {
		if w := measure(line); w > maxLine {
			maxLine = w
		}
		d.Dot = fixed.P(0, ascent+i*lineHeight)
		d.DrawString(line)
		if syntheticBold {
			// Faux bold: repeat the line one pixel to the right.
			d.Dot = fixed.P(1, ascent+i*lineHeight)
			d.DrawString(line)
		}
	}

	if maxLine == 0 {
		slogger().Debug("sample has no renderable glyphs",
			"variant", req.Variant.String())
	}
	if maxLine > width {
		maxLine = width
	}

	return Result{
		Variant: req.Variant,
		Image:   img,
		Extent:  image.Pt(maxLine, height),
	}, nil
}

// font returns the parsed font for a file path and collection index,
// loading and caching it on first use.
func (ir *ImageRenderer) font(path string, index int) (*opentype.Font, error) {
	key := fontKey{path: path, index: index}

	ir.mu.RLock()
	f, ok := ir.fonts[key]
	ir.mu.RUnlock()
	if ok {
		return f, nil
	}

	// #nosec G304 -- the path comes from the platform font scan.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preview: reading font file: %w", err)
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("preview: parsing %q: %w", path, err)
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("preview: face index %d out of range for %q", index, path)
	}
	f, err = coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("preview: loading face %d of %q: %w", index, path, err)
	}

	ir.mu.Lock()
	ir.fonts[key] = f
	ir.mu.Unlock()
	return f, nil
}
