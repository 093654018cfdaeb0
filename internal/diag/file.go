package diag

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// FileErrorKind classifies a FileError.
type FileErrorKind uint8

const (
	// KindNotFound means nothing exists at the resolved path.
	KindNotFound FileErrorKind = iota + 1
	// KindIsDirectory means a directory was found where a file was expected.
	KindIsDirectory
	// KindAccessDenied means the path escapes its root or the OS refused access.
	KindAccessDenied
	// KindIo is any other OS failure.
	KindIo
	// KindInvalidUTF8 means source text failed to decode.
	KindInvalidUTF8
	// KindPackageDownload means the file's package could not be prepared.
	KindPackageDownload
)

// Sentinels matched by errors.Is against a *FileError of the same kind.
var (
	ErrNotFound        = errors.New("file not found")
	ErrIsDirectory     = errors.New("is a directory")
	ErrAccessDenied    = errors.New("access denied")
	ErrIo              = errors.New("failed to load file")
	ErrInvalidUTF8     = errors.New("file is not valid utf-8")
	ErrPackageDownload = errors.New("failed to prepare package")
)

func (k FileErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindIsDirectory:
		return ErrIsDirectory
	case KindAccessDenied:
		return ErrAccessDenied
	case KindIo:
		return ErrIo
	case KindInvalidUTF8:
		return ErrInvalidUTF8
	case KindPackageDownload:
		return ErrPackageDownload
	}
	return nil
}

// Code returns the diagnostic code for the kind.
func (k FileErrorKind) Code() Code {
	switch k {
	case KindNotFound:
		return IOFileNotFound
	case KindIsDirectory:
		return IOIsDirectory
	case KindAccessDenied:
		return IOAccessDenied
	case KindIo:
		return IOReadFailed
	case KindInvalidUTF8:
		return IOInvalidUTF8
	case KindPackageDownload:
		return PRJPackageDownload
	}
	return UnknownCode
}

func (k FileErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("FileErrorKind(%d)", uint8(k))
}

// FileError is a per-file resolution failure.
type FileError struct {
	Kind FileErrorKind
	Path string // system path, if one was resolved
	Err  error  // underlying cause, may be nil
}

func (e *FileError) Error() string {
	switch e.Kind {
	case KindNotFound:
		if e.Path != "" {
			return fmt.Sprintf("file not found (searched at %s)", e.Path)
		}
		return "file not found"
	case KindIsDirectory:
		return "failed to load file (is a directory)"
	case KindAccessDenied:
		return "failed to load file (access denied)"
	case KindInvalidUTF8:
		if e.Path != "" {
			return fmt.Sprintf("file %s is not valid utf-8: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("file is not valid utf-8: %v", e.Err)
	case KindPackageDownload:
		return fmt.Sprintf("failed to prepare package: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to load file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load file %s", e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *FileError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NotFound builds a KindNotFound error for path.
func NotFound(path string) *FileError {
	return &FileError{Kind: KindNotFound, Path: path}
}

// IsDirectory builds a KindIsDirectory error for path.
func IsDirectory(path string) *FileError {
	return &FileError{Kind: KindIsDirectory, Path: path}
}

// AccessDenied builds a KindAccessDenied error for path (may be empty).
func AccessDenied(path string) *FileError {
	return &FileError{Kind: KindAccessDenied, Path: path}
}

// InvalidUTF8 wraps a decode failure.
func InvalidUTF8(path string, err error) *FileError {
	return &FileError{Kind: KindInvalidUTF8, Path: path, Err: err}
}

// PackageDownload wraps a package preparation failure.
func PackageDownload(err error) *FileError {
	return &FileError{Kind: KindPackageDownload, Err: err}
}

// FromOS classifies an OS error for path.
func FromOS(err error, path string) *FileError {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound(path)
	case errors.Is(err, fs.ErrPermission):
		return &FileError{Kind: KindAccessDenied, Path: path, Err: err}
	case errors.Is(err, syscall.EISDIR):
		return IsDirectory(path)
	}
	return &FileError{Kind: KindIo, Path: path, Err: err}
}
