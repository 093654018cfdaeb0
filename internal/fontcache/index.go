// Package fontcache persists per-file font face metadata so repeated
// catalog builds can skip header parsing for unchanged font files.
//
// Entries are keyed by absolute path and validated by size and
// modification time. The index is an optimisation only: a stale or
// unreadable index file is treated as empty.
package fontcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the payload format changes
const schemaVersion uint16 = 1

// Face is the cached metadata of one face in a font file.
type Face struct {
	Index   int    `msgpack:"i"`
	Family  string `msgpack:"f"`
	Style   uint8  `msgpack:"s"`
	Weight  uint16 `msgpack:"w"`
	Stretch uint16 `msgpack:"x"`
}

type entry struct {
	Size    int64  `msgpack:"size"`
	ModTime int64  `msgpack:"mtime"`
	Faces   []Face `msgpack:"faces"`
}

type payload struct {
	Schema  uint16           `msgpack:"schema"`
	Entries map[string]entry `msgpack:"entries"`
}

// Index is a face-metadata index backed by one msgpack file.
// Thread-safe for concurrent access.
type Index struct {
	mu      sync.RWMutex
	path    string
	entries map[string]entry
	dirty   bool
}

// DefaultPath returns the standard index location under the user cache dir.
func DefaultPath(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		var err error
		base, err = os.UserCacheDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(base, app, "fonts.mp"), nil
}

// Open loads the index at path. A missing, corrupt or outdated file yields
// an empty index; only unexpected IO errors are returned.
func Open(path string) (*Index, error) {
	x := &Index{path: path, entries: make(map[string]entry)}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return x, nil
		}
		return nil, err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return x, nil
	}
	if p.Schema != schemaVersion || p.Entries == nil {
		return x, nil
	}
	x.entries = p.Entries
	return x, nil
}

// Path returns the file backing the index.
func (x *Index) Path() string {
	if x == nil {
		return ""
	}
	return x.path
}

// Len returns the number of cached files.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Lookup returns the cached faces for path if fi still matches the entry.
func (x *Index) Lookup(path string, fi fs.FileInfo) ([]Face, bool) {
	if x == nil {
		return nil, false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[path]
	if !ok || e.Size != fi.Size() || e.ModTime != fi.ModTime().UnixNano() {
		return nil, false
	}
	return e.Faces, true
}

// Store records the faces found in path.
func (x *Index) Store(path string, fi fs.FileInfo, faces []Face) {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[path] = entry{
		Size:    fi.Size(),
		ModTime: fi.ModTime().UnixNano(),
		Faces:   append([]Face(nil), faces...),
	}
	x.dirty = true
}

// Prune drops entries whose path is not in keep.
func (x *Index) Prune(keep map[string]bool) {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for p := range x.entries {
		if !keep[p] {
			delete(x.entries, p)
			x.dirty = true
		}
	}
}

// Save writes the index if it changed since Open.
func (x *Index) Save() error {
	if x == nil {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.dirty {
		return nil
	}

	dir := filepath.Dir(x.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	p := payload{Schema: schemaVersion, Entries: x.entries}
	if err := msgpack.NewEncoder(f).Encode(&p); err != nil {
		f.Close()
		return fmt.Errorf("encode font index: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, x.path); err != nil {
		return err
	}
	x.dirty = false
	return nil
}
