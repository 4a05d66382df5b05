package preview

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fontview/catalog"
)

// writeFont materializes embedded font data as a file, since the
// renderer loads variants by path like the catalog reports them.
func writeFont(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing font fixture: %v", err)
	}
	return path
}

func goVariant(t *testing.T) catalog.Variant {
	t.Helper()
	return catalog.Variant{
		Family: "Go",
		Style:  "Regular",
		Weight: 400,
		Path:   writeFont(t, "goregular.ttf", goregular.TTF),
	}
}

func TestImageRendererRendersSample(t *testing.T) {
	ir := NewImageRenderer()
	req := Request{
		Variant:   goVariant(t),
		Size:      24,
		Color:     color.RGBA{A: 255},
		Text:      "Hello, preview",
		WrapWidth: 400,
	}
	res, err := ir.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Image == nil {
		t.Fatal("Render returned nil surface")
	}
	if got := res.Image.Bounds().Dx(); got != 400 {
		t.Errorf("surface width = %d, want 400", got)
	}
	if res.Extent.X <= 0 || res.Extent.Y <= 0 {
		t.Errorf("extent = %v, want positive", res.Extent)
	}
	if res.Extent.X > 400 {
		t.Errorf("extent width %d exceeds wrap width", res.Extent.X)
	}

	// Something must actually have been drawn.
	if !anyInk(res) {
		t.Error("no pixels drawn for a renderable sample")
	}
}

// anyInk reports whether any pixel of the result has non-zero alpha.
func anyInk(res Result) bool {
	b := res.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := res.Image.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}

func TestImageRendererWrapsAtWordBoundaries(t *testing.T) {
	ir := NewImageRenderer()
	v := goVariant(t)
	base := Request{
		Variant: v,
		Size:    24,
		Color:   color.RGBA{A: 255},
		Text:    "several words that will need wrapping somewhere",
	}

	wide := base
	wide.WrapWidth = 2000
	narrow := base
	narrow.WrapWidth = 150

	wideRes, err := ir.Render(wide)
	if err != nil {
		t.Fatalf("Render(wide): %v", err)
	}
	narrowRes, err := ir.Render(narrow)
	if err != nil {
		t.Fatalf("Render(narrow): %v", err)
	}

	if narrowRes.Extent.Y <= wideRes.Extent.Y {
		t.Errorf("narrow wrap height %d not greater than wide %d",
			narrowRes.Extent.Y, wideRes.Extent.Y)
	}
	if narrowRes.Extent.X > 150 {
		t.Errorf("narrow extent width %d exceeds wrap width", narrowRes.Extent.X)
	}
}

func TestImageRendererEmptySampleIsBlankNotError(t *testing.T) {
	ir := NewImageRenderer()
	req := Request{
		Variant:   goVariant(t),
		Size:      24,
		Color:     color.RGBA{A: 255},
		Text:      "",
		WrapWidth: 100,
	}
	res, err := ir.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Image == nil {
		t.Fatal("empty sample must still produce a surface")
	}
	if res.Extent.X != 0 {
		t.Errorf("extent width = %d, want 0 for empty sample", res.Extent.X)
	}
}

func TestImageRendererSyntheticBoldDrawsMoreInk(t *testing.T) {
	ir := NewImageRenderer()
	v := goVariant(t)
	plain := Request{
		Variant:   v,
		Size:      32,
		Color:     color.RGBA{A: 255},
		Text:      "Bold",
		WrapWidth: 200,
	}
	bold := plain
	bold.Weight = 700

	plainRes, err := ir.Render(plain)
	if err != nil {
		t.Fatalf("Render(plain): %v", err)
	}
	boldRes, err := ir.Render(bold)
	if err != nil {
		t.Fatalf("Render(bold): %v", err)
	}
	if countInk(boldRes) <= countInk(plainRes) {
		t.Error("weight override did not embolden the sample")
	}
}

// countInk sums the alpha coverage of a result.
func countInk(res Result) int {
	b := res.Image.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := res.Image.At(x, y).RGBA()
			total += int(a >> 8)
		}
	}
	return total
}

func TestImageRendererBoldFaceNeedsNoSynthetic(t *testing.T) {
	ir := NewImageRenderer()
	req := Request{
		Variant: catalog.Variant{
			Family: "Go",
			Style:  "Bold",
			Weight: 700,
			Path:   writeFont(t, "gobold.ttf", gobold.TTF),
		},
		Size:      24,
		Color:     color.RGBA{A: 255},
		Text:      "Bold face",
		WrapWidth: 300,
	}
	res, err := ir.Render(req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !anyInk(res) {
		t.Error("no pixels drawn")
	}
}

func TestImageRendererMissingFile(t *testing.T) {
	ir := NewImageRenderer()
	req := Request{
		Variant: catalog.Variant{Family: "Ghost", Style: "Regular", Weight: 400, Path: "/no/such/font.ttf"},
		Size:    24,
		Text:    "x",
	}
	if _, err := ir.Render(req); err == nil {
		t.Error("Render with missing file succeeded")
	}
}

func TestImageRendererRejectsInvalidRequest(t *testing.T) {
	ir := NewImageRenderer()
	req := Request{Variant: goVariant(t), Size: 4, Text: "x"}
	if _, err := ir.Render(req); !errors.Is(err, ErrSizeOutOfRange) {
		t.Errorf("Render(size 4) error = %v, want ErrSizeOutOfRange", err)
	}
}
