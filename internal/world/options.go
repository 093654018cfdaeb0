package world

import (
	"context"
	"io"
	"io/fs"
	"os"
	"time"

	"typster/internal/fingerprint"
	"typster/internal/fontcache"
	"typster/internal/fonts"
	"typster/internal/source"
	"typster/internal/trace"
)

// FS is the filesystem a world reads files through. Identify must return
// the same hash for every name of one file and distinct hashes otherwise.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	Identify(name string) (fingerprint.PathHash, error)
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

func (osFS) Identify(name string) (fingerprint.PathHash, error) {
	return fingerprint.Identify(name)
}

// PackageResolver maps a package spec to its local directory. It must be
// idempotent and leave nothing behind on failure; *packages.Storage
// satisfies it.
type PackageResolver interface {
	Prepare(spec source.PackageSpec) (string, error)
}

// contextResolver is a PackageResolver whose preparation joins the
// calling span.
type contextResolver interface {
	PrepareContext(ctx context.Context, spec source.PackageSpec) (string, error)
}

// Options configures New. Zero values pick defaults.
type Options struct {
	// Input is the entry file; "-" reads it from Stdin.
	Input string
	// Root overrides the project root (default: the input's directory).
	Root string
	// Inputs are named string values visible to the document.
	Inputs map[string]string

	// Fonts is a prebuilt catalog. If nil one is built from the font fields.
	Fonts             *fonts.Catalog
	FontPaths         []string
	IgnoreSystemFonts bool
	Embedded          []fonts.EmbeddedFont // nil selects fonts.DefaultEmbedded
	FontIndex         *fontcache.Index

	// Packages resolves package-qualified files (default: packages.NewStorage).
	Packages PackageResolver

	FS     FS               // default: the OS filesystem
	Stdin  io.Reader        // default: os.Stdin
	Now    func() time.Time // default: time.Now
	Tracer trace.Tracer
}
