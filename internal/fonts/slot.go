package fonts

import (
	"os"
	"sync"
)

// fileData reads a font file at most once for all of its slots.
type fileData struct {
	path string
	read func() ([]byte, error)
}

func newFileData(path string) *fileData {
	return &fileData{
		path: path,
		read: sync.OnceValues(func() ([]byte, error) {
			return os.ReadFile(path)
		}),
	}
}

// Slot is one face of the catalog with a memoized decode.
// The outcome, success or failure, is computed once.
type Slot struct {
	path  string // empty for embedded fonts
	index int
	get   func() (*Font, error)
}

func newFileSlot(data *fileData, index int) *Slot {
	return &Slot{
		path:  data.path,
		index: index,
		get: sync.OnceValues(func() (*Font, error) {
			b, err := data.read()
			if err != nil {
				return nil, err
			}
			return New(b, index)
		}),
	}
}

// newResolvedSlot wraps an already decoded embedded face.
func newResolvedSlot(f *Font) *Slot {
	return &Slot{
		index: f.Index(),
		get:   func() (*Font, error) { return f, nil },
	}
}

// Path returns the font file, or "" for embedded fonts.
func (s *Slot) Path() string { return s.path }

// Index returns the face index within the file.
func (s *Slot) Index() int { return s.index }

// Embedded reports whether the slot was resolved at catalog time.
func (s *Slot) Embedded() bool { return s.path == "" }

// Get decodes the face on first use and returns the memoized result.
func (s *Slot) Get() (*Font, error) {
	return s.get()
}
