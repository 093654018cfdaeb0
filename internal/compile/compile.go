// Package compile drives one compilation: it builds the world from
// params, hands it to an engine, and writes the document as PDF or PNG.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"typster/internal/observ"
	"typster/internal/packages"
	"typster/internal/trace"
	"typster/internal/world"
)

// DefaultPPI is the raster resolution used when Params.PPI is zero.
const DefaultPPI = 144

var (
	// ErrPagePattern means a multi-page PNG export has no {n} in its output path.
	ErrPagePattern = errors.New("cannot export multiple PNGs without `{n}` in output path")
	// ErrOutputRequired means the input is stdin and no output path was given.
	ErrOutputRequired = errors.New("output path is required when reading from stdin")
	// ErrEmptyDocument means the engine produced no pages.
	ErrEmptyDocument = errors.New("document has no pages")
)

// Params describes one compilation.
type Params struct {
	Input  string // "-" reads stdin
	Output string // default: Input with a .pdf extension
	Root   string
	// FontPaths are searched before system fonts.
	FontPaths         []string
	Inputs            map[string]string
	PPI               float64
	PackagePath       string
	PackageCachePath  string
	IgnoreSystemFonts bool

	// Downloader overrides the registry transport for packages.
	Downloader packages.Downloader
	// Timer collects phase timings if set.
	Timer *observ.Timer
}

// Engine typesets the main file of w.
type Engine interface {
	Compile(ctx context.Context, w world.World) (Document, error)
}

// Document is a laid-out result.
type Document interface {
	PageCount() int
	PDF() ([]byte, error)
	// PNG renders page (0-based) at ppi pixels per inch.
	PNG(page int, ppi float64) ([]byte, error)
}

// NewWorld builds the world described by p.
func NewWorld(ctx context.Context, p Params) (*world.SystemWorld, error) {
	tracer := trace.FromContext(ctx)
	return world.New(world.Options{
		Input:             p.Input,
		Root:              p.Root,
		Inputs:            p.Inputs,
		FontPaths:         p.FontPaths,
		IgnoreSystemFonts: p.IgnoreSystemFonts,
		Packages: packages.NewStorage(packages.Options{
			DataDir:    p.PackagePath,
			CacheDir:   p.PackageCachePath,
			Downloader: p.Downloader,
			Tracer:     tracer,
		}),
		Tracer: tracer,
	})
}

// Compile runs the whole pipeline and returns the elapsed time.
func Compile(ctx context.Context, engine Engine, p Params) (time.Duration, error) {
	start := time.Now()
	timer := p.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", 0)
	span.WithExtra("input", p.Input)

	output, err := outputPath(p)
	if err != nil {
		span.End(err.Error())
		return 0, err
	}

	var w *world.SystemWorld
	_, err = timer.Measure("world", func() error {
		var err error
		w, err = NewWorld(ctx, p)
		return err
	})
	if err != nil {
		span.End(err.Error())
		return 0, err
	}

	var doc Document
	_, err = timer.Measure("compile", func() error {
		if _, err := w.Main(); err != nil {
			return fmt.Errorf("main file: %w", err)
		}
		var err error
		doc, err = engine.Compile(trace.WithSpan(ctx, span), w)
		return err
	})
	if err != nil {
		span.End(err.Error())
		return 0, err
	}

	_, err = timer.Measure("export", func() error {
		return export(doc, output, p.PPI)
	})
	if err != nil {
		span.End(err.Error())
		return 0, err
	}

	span.End("")
	return time.Since(start), nil
}

func outputPath(p Params) (string, error) {
	if p.Output != "" {
		return p.Output, nil
	}
	if p.Input == "-" {
		return "", ErrOutputRequired
	}
	return strings.TrimSuffix(p.Input, filepath.Ext(p.Input)) + ".pdf", nil
}

func export(doc Document, output string, ppi float64) error {
	if !strings.EqualFold(filepath.Ext(output), ".png") {
		data, err := doc.PDF()
		if err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
		return writeFile(output, data)
	}

	if ppi <= 0 {
		ppi = DefaultPPI
	}
	total := doc.PageCount()
	if total == 0 {
		return ErrEmptyDocument
	}
	if total > 1 && !strings.Contains(output, "{n}") {
		return ErrPagePattern
	}
	for i := range total {
		data, err := doc.PNG(i, ppi)
		if err != nil {
			return fmt.Errorf("export png page %d: %w", i+1, err)
		}
		if err := writeFile(PagePath(output, i+1, total), data); err != nil {
			return err
		}
	}
	return nil
}

// PagePath substitutes the 1-based page number into pattern, zero-padded
// to the width of total.
func PagePath(pattern string, page, total int) string {
	width := len(strconv.Itoa(total))
	return strings.ReplaceAll(pattern, "{n}", fmt.Sprintf("%0*d", width, page))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
