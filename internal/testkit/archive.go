// Package testkit holds fixtures shared by package tests.
package testkit

import (
	"archive/tar"
	"bytes"
	"sort"

	"github.com/klauspost/compress/gzip"
)

// TarGz builds a gzip-compressed tarball from path -> content, with
// entries in sorted order.
func TarGz(files map[string]string) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for _, name := range names {
		body := files[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Manifest renders a minimal typst.toml.
func Manifest(name, version, entrypoint string) string {
	return "[package]\n" +
		"name = \"" + name + "\"\n" +
		"version = \"" + version + "\"\n" +
		"entrypoint = \"" + entrypoint + "\"\n"
}
