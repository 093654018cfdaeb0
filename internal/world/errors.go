package world

import "fmt"

// InitErrorKind classifies a failure to construct a SystemWorld.
type InitErrorKind uint8

const (
	// InputNotFound means the entry file does not exist.
	InputNotFound InitErrorKind = iota + 1
	// RootNotFound means the project root does not exist or is not a directory.
	RootNotFound
	// InputOutsideRoot means the entry file is not inside the root.
	InputOutsideRoot
)

func (k InitErrorKind) String() string {
	switch k {
	case InputNotFound:
		return "input file not found"
	case RootNotFound:
		return "root directory not found"
	case InputOutsideRoot:
		return "source file must be contained in project root"
	}
	return fmt.Sprintf("InitErrorKind(%d)", uint8(k))
}

// InitError is fatal to creating a world, unlike per-file errors.
type InitError struct {
	Kind InitErrorKind
	Path string
	Err  error
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Path)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
