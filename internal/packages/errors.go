package packages

import (
	"errors"
	"fmt"

	"typster/internal/source"
)

// ErrorKind classifies a DownloadError.
type ErrorKind uint8

const (
	// KindNotFound means the package exists neither locally nor in the registry.
	KindNotFound ErrorKind = iota + 1
	// KindNetwork is a transport failure.
	KindNetwork
	// KindArchive means the downloaded archive could not be unpacked.
	KindArchive
	// KindManifest means typst.toml is missing or does not match the spec.
	KindManifest
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNetwork:
		return "network"
	case KindArchive:
		return "archive"
	case KindManifest:
		return "manifest"
	}
	return "unknown"
}

// DownloadError is a failure to prepare a package.
type DownloadError struct {
	Spec source.PackageSpec
	Kind ErrorKind
	Err  error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("package not found: %s", e.Spec)
	case KindNetwork:
		return fmt.Sprintf("failed to download package %s: %v", e.Spec, e.Err)
	case KindArchive:
		return fmt.Sprintf("malformed package archive for %s: %v", e.Spec, e.Err)
	case KindManifest:
		return fmt.Sprintf("invalid manifest in %s: %v", e.Spec, e.Err)
	}
	return fmt.Sprintf("package %s: %v", e.Spec, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a KindNotFound DownloadError.
func IsNotFound(err error) bool {
	var de *DownloadError
	return errors.As(err, &de) && de.Kind == KindNotFound
}
