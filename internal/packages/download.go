package packages

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"typster/internal/source"
	"typster/internal/version"
)

// DefaultRegistry serves the preview namespace.
const DefaultRegistry = "https://packages.typst.org"

// DownloadableNamespace is the only namespace fetched from the registry.
const DownloadableNamespace = "preview"

// Downloader fetches the gzip-compressed tarball of a package.
type Downloader interface {
	Download(ctx context.Context, spec source.PackageSpec) (io.ReadCloser, error)
}

// HTTPDownloader fetches archives from a registry over HTTP.
type HTTPDownloader struct {
	Client    *http.Client
	Registry  string
	UserAgent string
}

// NewHTTPDownloader returns a downloader for DefaultRegistry.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		Client:    &http.Client{Timeout: 2 * time.Minute},
		Registry:  DefaultRegistry,
		UserAgent: version.UserAgent(),
	}
}

// URL returns the archive location of spec.
func (d *HTTPDownloader) URL(spec source.PackageSpec) string {
	return fmt.Sprintf("%s/%s/%s-%s.tar.gz",
		strings.TrimSuffix(d.Registry, "/"), spec.Namespace, spec.Name, spec.Version)
}

func (d *HTTPDownloader) Download(ctx context.Context, spec source.PackageSpec) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL(spec), http.NoBody)
	if err != nil {
		return nil, &DownloadError{Spec: spec, Kind: KindNetwork, Err: err}
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &DownloadError{Spec: spec, Kind: KindNetwork, Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, &DownloadError{Spec: spec, Kind: KindNotFound}
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, &DownloadError{Spec: spec, Kind: KindNetwork, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return resp.Body, nil
}
