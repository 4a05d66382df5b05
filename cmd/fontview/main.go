// Command fontview renders previews of installed fonts to PNG files.
//
// It is a headless consumer of the fontview pipeline: it loads the
// font catalog, filters it, and writes one preview image per variant.
// An interactive interface would drive the same pipeline through
// fontview.Coordinator instead.
package main

import (
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/fontview"
	"github.com/gogpu/fontview/catalog"
	"github.com/gogpu/fontview/preview"
)

var (
	filter  string
	sample  string
	size    float64
	weight  int
	colorS  string
	wrap    int
	outDir  string
	maxN    int
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "fontview",
		Short: "Render previews of installed fonts to PNG files",
		RunE:  run,
		// Errors are printed once by Execute.
		SilenceUsage: true,
	}
	root.Flags().StringVar(&filter, "filter", "", "substring filter on family names")
	root.Flags().StringVar(&sample, "sample", fontview.DefaultSampleText, "sample text to render")
	root.Flags().Float64Var(&size, "size", 24, "point size (8-72)")
	root.Flags().IntVar(&weight, "weight", 0, "weight override (e.g. 700), 0 keeps the variant weight")
	root.Flags().StringVar(&colorS, "color", "#000000", "sample color as #RRGGBB")
	root.Flags().IntVar(&wrap, "wrap", preview.DefaultWrapWidth, "wrap width in pixels")
	root.Flags().StringVar(&outDir, "out", "previews", "output directory")
	root.Flags().IntVar(&maxN, "max", 20, "maximum number of variants to render")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	fontview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	col, err := parseColor(colorS)
	if err != nil {
		return err
	}

	cat := catalog.New()
	handle := cat.StartLoad(catalog.WithProgress(func(p catalog.LoadProgress) {
		if !p.Done {
			fmt.Fprintf(os.Stderr, "\rscanning fonts... %d/%d", p.Scanned, p.Total)
		}
	}))
	<-handle.Done()
	fmt.Fprintln(os.Stderr)
	if err := handle.Err(); err != nil {
		// Degraded: keep going with whatever was collected.
		fmt.Fprintf(os.Stderr, "warning: font enumeration incomplete: %v\n", err)
	}

	entries := cat.Search(filter)
	if len(entries) == 0 {
		return fmt.Errorf("no font families match %q", filter)
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cache := preview.NewCache(preview.WithCapacity(maxN))
	rendered := 0
	for _, e := range entries {
		for _, v := range e.Variants {
			if rendered >= maxN {
				break
			}
			req := preview.Request{
				Variant:   v,
				Size:      size,
				Weight:    weight,
				Color:     col,
				Text:      sample,
				WrapWidth: wrap,
			}
			res, err := cache.Get(req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", v, err)
				continue
			}
			name := fileName(v)
			if err := savePNG(filepath.Join(outDir, name), res); err != nil {
				return err
			}
			fmt.Printf("%-40s -> %s\n", v, name)
			rendered++
		}
	}
	if rendered == 0 {
		return fmt.Errorf("no variants could be rendered")
	}
	fmt.Printf("%d previews written to %s\n", rendered, outDir)
	return nil
}

// parseColor parses a #RRGGBB color.
func parseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want #RRGGBB", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
		A: 255,
	}, nil
}

// fileName derives a safe file name for a variant preview.
func fileName(v catalog.Variant) string {
	name := strings.ReplaceAll(v.String(), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '-'
		}
		return r
	}, name)
	return name + ".png"
}

func savePNG(path string, res preview.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, res.Image); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
