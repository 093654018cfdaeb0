package fonts

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"typster/internal/fontcache"
	"typster/internal/trace"
)

// Options configures a catalog build.
type Options struct {
	// FontPaths are searched first, highest priority first. Entries may be
	// directories or single font files.
	FontPaths []string
	// IncludeSystem searches the platform font directories after FontPaths.
	IncludeSystem bool
	// Embedded payloads are registered last. Nil selects DefaultEmbedded;
	// an empty non-nil slice registers none.
	Embedded []EmbeddedFont
	// Index, if set, caches face metadata per file across runs.
	Index  *fontcache.Index
	Tracer trace.Tracer
}

// Searcher accumulates faces into a catalog. Failures are never fatal:
// unreadable directories and files, and faces whose headers cannot be
// parsed, are skipped and traced.
type Searcher struct {
	index   *fontcache.Index
	tracer  trace.Tracer
	book    *Book
	slots   []*Slot
	visited map[string]bool // resolved directories
	seen    map[string]bool // font files scanned, for index pruning
}

func NewSearcher(opts Options) *Searcher {
	return &Searcher{
		index:   opts.Index,
		tracer:  trace.OrNop(opts.Tracer),
		book:    NewBook(),
		visited: make(map[string]bool),
		seen:    make(map[string]bool),
	}
}

// Search builds a catalog from caller paths, then system directories,
// then embedded payloads.
func Search(opts Options) *Catalog {
	s := NewSearcher(opts)
	span := trace.Begin(s.tracer, trace.ScopePass, "font_search", 0)

	for _, p := range opts.FontPaths {
		s.SearchPath(p)
	}
	if opts.IncludeSystem {
		for _, dir := range SystemDirs() {
			s.SearchDir(dir)
		}
	}
	embedded := opts.Embedded
	if embedded == nil {
		embedded = DefaultEmbedded()
	}
	s.SearchEmbedded(embedded)

	span.WithExtra("faces", strconv.Itoa(len(s.slots))).End("")
	return s.Catalog()
}

// Catalog returns the faces found so far.
func (s *Searcher) Catalog() *Catalog {
	return &Catalog{Book: s.book, Slots: s.slots}
}

// Scanned returns the absolute paths of all font files scanned.
func (s *Searcher) Scanned() map[string]bool {
	return s.seen
}

// SearchPath searches a directory recursively, or a single file.
func (s *Searcher) SearchPath(p string) {
	fi, err := os.Stat(p)
	if err != nil {
		s.skip(p, err)
		return
	}
	if fi.IsDir() {
		s.SearchDir(p)
		return
	}
	s.SearchFile(p)
}

// SearchDir walks dir in lexical order, following symlinks.
func (s *Searcher) SearchDir(dir string) {
	resolved, ok := s.enter(dir)
	if !ok {
		return
	}
	// WalkDir does not descend into a symlinked root.
	if fi, err := os.Lstat(dir); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		dir = resolved
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.skip(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if _, ok := s.enter(path); !ok {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			fi, err := os.Stat(path)
			if err != nil {
				s.skip(path, err)
				return nil
			}
			if fi.IsDir() {
				s.SearchDir(path)
				return nil
			}
		}
		if IsFontFile(path) {
			s.SearchFile(path)
		}
		return nil
	})
	if err != nil {
		s.skip(dir, err)
	}
}

// enter marks a directory visited; false if it was already walked.
func (s *Searcher) enter(dir string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		s.skip(dir, err)
		return "", false
	}
	if s.visited[resolved] {
		return resolved, false
	}
	s.visited[resolved] = true
	return resolved, true
}

// SearchFile registers every face of one font file.
func (s *Searcher) SearchFile(path string) {
	if !IsFontFile(path) {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		s.skip(path, err)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		s.skip(path, err)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s.seen[abs] = true

	var faces []face
	if cached, ok := s.index.Lookup(abs, fi); ok {
		faces = fromCache(cached)
		trace.Point(s.tracer, trace.ScopeFile, "font_index_hit", path)
	} else {
		faces, err = scanFaces(f)
		if err != nil {
			s.skip(path, err)
		}
		if len(faces) > 0 {
			s.index.Store(abs, fi, toCache(faces))
		}
	}
	if len(faces) == 0 {
		return
	}

	data := newFileData(path)
	for _, fc := range faces {
		s.push(fc.info, newFileSlot(data, fc.index))
	}
	trace.Point(s.tracer, trace.ScopeFile, "font_file", path, "faces", strconv.Itoa(len(faces)))
}

// SearchEmbedded registers in-memory payloads as already-resolved slots.
func (s *Searcher) SearchEmbedded(fonts []EmbeddedFont) {
	for _, ef := range fonts {
		faces, err := scanFaces(bytes.NewReader(ef.Data))
		if err != nil {
			s.skip(ef.Name, err)
		}
		for _, fc := range faces {
			f, err := New(ef.Data, fc.index)
			if err != nil {
				s.skip(ef.Name, err)
				continue
			}
			s.push(f.Info(), newResolvedSlot(f))
		}
	}
}

func (s *Searcher) push(info Info, slot *Slot) {
	s.book.Push(info)
	s.slots = append(s.slots, slot)
	trace.Point(s.tracer, trace.ScopeFace, "face", info.Family, "variant", info.Variant.String())
}

func (s *Searcher) skip(path string, err error) {
	trace.Point(s.tracer, trace.ScopeFile, "font_skip", path, "error", err.Error())
}

// IsFontFile matches ttf, otf, ttc and otc, case-insensitively.
func IsFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf", ".ttc", ".otc":
		return true
	}
	return false
}

func toCache(faces []face) []fontcache.Face {
	out := make([]fontcache.Face, len(faces))
	for i, fc := range faces {
		out[i] = fontcache.Face{
			Index:   fc.index,
			Family:  fc.info.Family,
			Style:   uint8(fc.info.Variant.Style),
			Weight:  uint16(fc.info.Variant.Weight),
			Stretch: uint16(fc.info.Variant.Stretch),
		}
	}
	return out
}

func fromCache(cached []fontcache.Face) []face {
	out := make([]face, len(cached))
	for i, c := range cached {
		out[i] = face{
			index: c.Index,
			info: Info{
				Family: c.Family,
				Variant: Variant{
					Style:   Style(c.Style),
					Weight:  Weight(c.Weight),
					Stretch: Stretch(c.Stretch),
				},
			},
		}
	}
	return out
}
