package packages

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"typster/internal/source"
	"typster/internal/trace"
)

// Options configures a Storage. Zero values pick the platform defaults.
type Options struct {
	DataDir    string
	CacheDir   string
	Downloader Downloader // nil selects NewHTTPDownloader
	Tracer     trace.Tracer
}

// Storage maps package specs to directories, downloading on demand.
// Safe for concurrent use; concurrent requests for one spec share a single
// download.
type Storage struct {
	dataDir  string
	cacheDir string
	dl       Downloader
	tracer   trace.Tracer
	group    singleflight.Group
}

func NewStorage(opts Options) *Storage {
	s := &Storage{
		dataDir:  opts.DataDir,
		cacheDir: opts.CacheDir,
		dl:       opts.Downloader,
		tracer:   trace.OrNop(opts.Tracer),
	}
	if s.dataDir == "" {
		s.dataDir = DefaultDataDir()
	}
	if s.cacheDir == "" {
		s.cacheDir = DefaultCacheDir()
	}
	if s.dl == nil {
		s.dl = NewHTTPDownloader()
	}
	return s
}

func (s *Storage) DataDir() string  { return s.dataDir }
func (s *Storage) CacheDir() string { return s.cacheDir }

// subdir is namespace/name/version.
func subdir(spec source.PackageSpec) string {
	return filepath.Join(spec.Namespace, spec.Name, spec.Version.String())
}

// Prepare is PrepareContext without cancellation.
func (s *Storage) Prepare(spec source.PackageSpec) (string, error) {
	return s.PrepareContext(context.Background(), spec)
}

// PrepareContext returns the local directory of spec. Repeated calls for a
// prepared spec return the same directory without downloading.
func (s *Storage) PrepareContext(ctx context.Context, spec source.PackageSpec) (string, error) {
	if s.dataDir != "" {
		dir := filepath.Join(s.dataDir, subdir(spec))
		if isDir(dir) {
			return dir, nil
		}
	}
	if s.cacheDir == "" {
		return "", &DownloadError{Spec: spec, Kind: KindNotFound}
	}
	dir := filepath.Join(s.cacheDir, subdir(spec))
	if isDir(dir) {
		return dir, nil
	}
	if spec.Namespace != DownloadableNamespace {
		return "", &DownloadError{Spec: spec, Kind: KindNotFound}
	}

	_, err, _ := s.group.Do(spec.String(), func() (any, error) {
		if isDir(dir) {
			return nil, nil
		}
		return nil, s.download(ctx, spec, dir)
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (s *Storage) download(ctx context.Context, spec source.PackageSpec, dir string) error {
	span := trace.BeginChild(ctx, s.tracer, trace.ScopeFile, "package_download")
	span.WithExtra("package", spec.String())
	defer span.End("")

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &DownloadError{Spec: spec, Kind: KindNetwork, Err: err}
	}
	tmp, err := os.MkdirTemp(parent, ".download-*")
	if err != nil {
		return &DownloadError{Spec: spec, Kind: KindNetwork, Err: err}
	}
	// no-op once renamed
	defer os.RemoveAll(tmp)

	body, err := s.dl.Download(ctx, spec)
	if err != nil {
		var de *DownloadError
		if errors.As(err, &de) {
			return err
		}
		return &DownloadError{Spec: spec, Kind: KindNetwork, Err: err}
	}
	defer body.Close()

	if err := unpack(body, tmp); err != nil {
		return &DownloadError{Spec: spec, Kind: KindArchive, Err: err}
	}
	m, err := ReadManifest(tmp)
	if err != nil {
		return &DownloadError{Spec: spec, Kind: KindManifest, Err: err}
	}
	if err := m.Validate(spec); err != nil {
		return &DownloadError{Spec: spec, Kind: KindManifest, Err: err}
	}

	// MkdirTemp creates 0700
	if err := os.Chmod(tmp, 0o755); err != nil {
		return &DownloadError{Spec: spec, Kind: KindArchive, Err: err}
	}
	if err := os.Rename(tmp, dir); err != nil {
		// another process won the race
		if isDir(dir) {
			return nil
		}
		return &DownloadError{Spec: spec, Kind: KindArchive, Err: err}
	}
	trace.Point(s.tracer, trace.ScopeFile, "package_ready", dir)
	return nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	if err != nil {
		return false
	}
	return fi.IsDir()
}
