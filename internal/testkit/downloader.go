package testkit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"typster/internal/packages"
	"typster/internal/source"
)

// Downloader serves archives from memory and counts requests per spec.
type Downloader struct {
	mu       sync.Mutex
	archives map[string][]byte
	failures map[string]error
	calls    map[string]int
}

func NewDownloader() *Downloader {
	return &Downloader{
		archives: make(map[string][]byte),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Serve registers the archive returned for spec.
func (d *Downloader) Serve(spec source.PackageSpec, archive []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.archives[spec.String()] = archive
}

// Fail makes downloads of spec return err.
func (d *Downloader) Fail(spec source.PackageSpec, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[spec.String()] = err
}

// Calls returns how many times spec was requested.
func (d *Downloader) Calls(spec source.PackageSpec) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[spec.String()]
}

// Total returns the number of requests for all specs.
func (d *Downloader) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

func (d *Downloader) Download(ctx context.Context, spec source.PackageSpec) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	key := spec.String()
	d.calls[key]++
	if err, ok := d.failures[key]; ok {
		return nil, err
	}
	data, ok := d.archives[key]
	if !ok {
		return nil, &packages.DownloadError{Spec: spec, Kind: packages.KindNotFound}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ErrOffline is a canned transport failure.
var ErrOffline = errors.New("network unreachable")
