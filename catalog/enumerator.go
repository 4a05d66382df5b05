package catalog

import (
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
)

// Enumerator lists the font variants installed on the platform.
// Implementations may block; the catalog always calls Fonts from its
// background enumeration worker, never from the caller's goroutine.
type Enumerator interface {
	Fonts() ([]Variant, error)
}

// SystemEnumerator discovers installed fonts through the go-text
// fontscan index. The scan walks the platform font directories and is
// cached on disk by fontscan, so the first run of a session is the
// expensive one.
type SystemEnumerator struct {
	// CacheDir overrides the directory for the fontscan index.
	// Empty means os.UserCacheDir.
	CacheDir string
}

// scanLogger adapts the package logger to fontscan's Printf-style
// Logger interface, so scan warnings land in the same place as the
// rest of the catalog's output.
type scanLogger struct{}

func (scanLogger) Printf(format string, args ...interface{}) {
	slogger().Warn(fmt.Sprintf(format, args...))
}

// Fonts implements the Enumerator interface.
// Footprints without a usable family or file path are skipped and
// logged; they cannot be rendered or deduplicated meaningfully.
func (e *SystemEnumerator) Fonts() ([]Variant, error) {
	dir := e.CacheDir
	if dir == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("catalog: resolving font cache dir: %w", err)
		}
		dir = d
	}

	footprints, err := fontscan.SystemFonts(scanLogger{}, dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: scanning system fonts: %w", err)
	}

	variants := make([]Variant, 0, len(footprints))
	for _, fp := range footprints {
		v, ok := footprintVariant(fp)
		if !ok {
			slogger().Debug("skipping unusable font",
				"family", fp.Family, "file", fp.Location.File)
			continue
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// footprintVariant converts a fontscan footprint to a Variant.
// The footprint carries no style string, so the name is derived from
// the aspect.
func footprintVariant(fp fontscan.Footprint) (Variant, bool) {
	if fp.Family == "" || fp.Location.File == "" {
		return Variant{}, false
	}
	weight := int(fp.Aspect.Weight)
	if weight == 0 {
		weight = int(font.WeightNormal)
	}
	italic := fp.Aspect.Style == font.StyleItalic
	return Variant{
		Family: fp.Family,
		Style:  styleName(weight, italic),
		Weight: weight,
		Italic: italic,
		Path:   fp.Location.File,
		Index:  int(fp.Location.Index),
	}, true
}
