package world

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"typster/internal/diag"
	"typster/internal/fingerprint"
	"typster/internal/fonts"
	"typster/internal/packages"
	"typster/internal/source"
	"typster/internal/trace"
	"typster/internal/version"
)

// stdinHash keys the stdin slot; no inode hashes to it.
var stdinHash = fingerprint.PathHash(fingerprint.OfStrings("stdin"))

// fileSlot caches one physical file. id is the first identifier that
// reached it.
type fileSlot struct {
	id     source.FileID
	source slotCell[*source.Source]
	file   slotCell[[]byte]
}

// resolution is the per-pass result of mapping a FileID to a slot.
type resolution struct {
	slot *fileSlot
	path string
	err  error
}

type pkgResult struct {
	dir string
	err error
}

// SystemWorld serves files from the filesystem and packages from a
// PackageResolver. Safe for concurrent use.
type SystemWorld struct {
	root     string
	main     source.FileID
	library  *Library
	catalog  *fonts.Catalog
	packages PackageResolver
	fs       FS
	tracer   trace.Tracer
	clock    func() time.Time
	stdin    func() ([]byte, error)

	mu       sync.Mutex
	slots    map[fingerprint.PathHash]*fileSlot
	hashes   map[source.FileID]fingerprint.PathHash // last identity of each id
	refs     map[fingerprint.PathHash]int           // ids per identity
	resolved map[source.FileID]resolution           // current pass only
	pkgs     map[source.PackageSpec]pkgResult
	now      time.Time
	nowSet   bool
	pass     uint64
}

// New validates the input and root and builds the world. Errors are
// *InitError.
func New(opts Options) (*SystemWorld, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = osFS{}
	}

	root, main, err := resolveInput(fsys, opts.Input, opts.Root)
	if err != nil {
		return nil, err
	}

	engine, err := source.ParsePackageVersion(version.EngineVersion)
	if err != nil {
		return nil, err
	}

	tracer := trace.OrNop(opts.Tracer)
	catalog := opts.Fonts
	if catalog == nil {
		catalog = fonts.Search(fonts.Options{
			FontPaths:     opts.FontPaths,
			IncludeSystem: !opts.IgnoreSystemFonts,
			Embedded:      opts.Embedded,
			Index:         opts.FontIndex,
			Tracer:        tracer,
		})
	}

	resolver := opts.Packages
	if resolver == nil {
		resolver = packages.NewStorage(packages.Options{Tracer: tracer})
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}

	return &SystemWorld{
		root:     root,
		main:     main,
		library:  newLibrary(opts.Inputs, engine),
		catalog:  catalog,
		packages: resolver,
		fs:       fsys,
		tracer:   tracer,
		clock:    clock,
		stdin:    sync.OnceValues(func() ([]byte, error) { return io.ReadAll(stdin) }),
		slots:    make(map[fingerprint.PathHash]*fileSlot),
		hashes:   make(map[source.FileID]fingerprint.PathHash),
		refs:     make(map[fingerprint.PathHash]int),
		resolved: make(map[source.FileID]resolution),
		pkgs:     make(map[source.PackageSpec]pkgResult),
	}, nil
}

func resolveInput(fsys FS, input, rootOverride string) (string, source.FileID, error) {
	if input == "-" {
		root := rootOverride
		if root == "" {
			var err error
			if root, err = os.Getwd(); err != nil {
				return "", source.FileID{}, &InitError{Kind: RootNotFound, Err: err}
			}
		}
		root, err := canonicalDir(fsys, root)
		if err != nil {
			return "", source.FileID{}, err
		}
		return root, source.StdinID, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return "", source.FileID{}, &InitError{Kind: InputNotFound, Path: input, Err: err}
	}
	if _, err := fsys.Stat(abs); err != nil {
		return "", source.FileID{}, &InitError{Kind: InputNotFound, Path: input, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	root := rootOverride
	if root == "" {
		root = filepath.Dir(abs)
	}
	root, err = canonicalDir(fsys, root)
	if err != nil {
		return "", source.FileID{}, err
	}

	vpath, ok := source.WithinRoot(abs, root)
	if !ok {
		return "", source.FileID{}, &InitError{Kind: InputOutsideRoot, Path: input}
	}
	return root, source.NewFileID(source.PackageSpec{}, vpath), nil
}

func canonicalDir(fsys FS, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &InitError{Kind: RootNotFound, Path: dir, Err: err}
	}
	fi, err := fsys.Stat(abs)
	if err != nil {
		return "", &InitError{Kind: RootNotFound, Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return "", &InitError{Kind: RootNotFound, Path: dir}
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// Root returns the project root.
func (w *SystemWorld) Root() string { return w.root }

func (w *SystemWorld) Library() *Library { return w.library }

func (w *SystemWorld) Book() *fonts.Book { return w.catalog.Book }

// Catalog returns the font catalog with its slots.
func (w *SystemWorld) Catalog() *fonts.Catalog { return w.catalog }

func (w *SystemWorld) MainID() source.FileID { return w.main }

// Main returns the entry file as source.
func (w *SystemWorld) Main() (*source.Source, error) {
	return w.Source(w.main)
}

func (w *SystemWorld) Font(index int) (*fonts.Font, bool) {
	f, err := w.catalog.FontErr(index)
	if err != nil {
		trace.Point(w.tracer, trace.ScopeFace, "font_unavailable", strconv.Itoa(index), "error", err.Error())
		return nil, false
	}
	return f, true
}

// Source returns id decoded as UTF-8 text. Unchanged content yields the
// same *Source; changed content updates it in place.
func (w *SystemWorld) Source(id source.FileID) (*source.Source, error) {
	r := w.lookup(id)
	if r.err != nil {
		return nil, r.err
	}
	return r.slot.source.get(w.loader(id, r.path), deriveSource(r.slot.id, r.path))
}

// deriveSource decodes bytes into the Source of id, reusing prev.
func deriveSource(id source.FileID, path string) deriveFunc[*source.Source] {
	return func(data []byte, prev *source.Source, hasPrev bool) (*source.Source, error) {
		text, err := source.DecodeText(data)
		if err != nil {
			return nil, diag.InvalidUTF8(path, err)
		}
		if err := source.CheckText(text); err != nil {
			return nil, &diag.FileError{Kind: diag.KindIo, Path: path, Err: err}
		}
		if hasPrev {
			prev.Replace(text)
			return prev, nil
		}
		return source.NewSource(id, text), nil
	}
}

// File returns the raw bytes of id. Callers must not modify the slice.
func (w *SystemWorld) File(id source.FileID) ([]byte, error) {
	r := w.lookup(id)
	if r.err != nil {
		return nil, r.err
	}
	return r.slot.file.get(w.loader(id, r.path), func(data []byte, _ []byte, _ bool) ([]byte, error) {
		return data, nil
	})
}

func (w *SystemWorld) loader(id source.FileID, path string) func() ([]byte, error) {
	if id == source.StdinID {
		return func() ([]byte, error) {
			data, err := w.stdin()
			if err != nil {
				return nil, &diag.FileError{Kind: diag.KindIo, Path: "<stdin>", Err: err}
			}
			return data, nil
		}
	}
	return func() ([]byte, error) {
		data, err := w.fs.ReadFile(path)
		if err != nil {
			return nil, diag.FromOS(err, path)
		}
		trace.Point(w.tracer, trace.ScopeFile, "read", path, "bytes", strconv.Itoa(len(data)))
		return data, nil
	}
}

// lookup maps id to its slot, once per pass. The map lock is not held
// while resolving.
func (w *SystemWorld) lookup(id source.FileID) resolution {
	w.mu.Lock()
	if r, ok := w.resolved[id]; ok {
		w.mu.Unlock()
		return r
	}
	w.mu.Unlock()

	path, hash, err := w.resolve(id)

	w.mu.Lock()
	defer w.mu.Unlock()
	// first writer wins
	if r, ok := w.resolved[id]; ok {
		return r
	}
	r := resolution{path: path, err: err}
	if err == nil {
		r.slot = w.bind(id, hash)
	}
	w.resolved[id] = r
	return r
}

// bind returns the slot for hash and records it as the identity of id.
// When id moved to a new identity (a file replaced by rename) and nothing
// else reaches its old slot, the slot moves with it so its values are
// revalidated instead of rebuilt. Caller holds w.mu.
func (w *SystemWorld) bind(id source.FileID, hash fingerprint.PathHash) *fileSlot {
	prev, had := w.hashes[id]
	if had && prev == hash {
		return w.slots[hash]
	}
	slot := w.slots[hash]
	if slot == nil {
		if had && w.refs[prev] == 1 {
			slot = w.slots[prev]
			delete(w.slots, prev)
		} else {
			slot = &fileSlot{id: id}
		}
		w.slots[hash] = slot
	}
	if had {
		w.release(prev)
	}
	w.hashes[id] = hash
	w.refs[hash]++
	return slot
}

// release drops one reference to hash and forgets its slot when none remain.
func (w *SystemWorld) release(hash fingerprint.PathHash) {
	w.refs[hash]--
	if w.refs[hash] > 0 {
		return
	}
	delete(w.refs, hash)
	delete(w.slots, hash)
}

// resolve finds the system path and identity of id.
func (w *SystemWorld) resolve(id source.FileID) (string, fingerprint.PathHash, error) {
	if id == source.StdinID {
		if w.main != source.StdinID {
			return "", fingerprint.PathHash{}, diag.NotFound("<stdin>")
		}
		return "", stdinHash, nil
	}

	root := w.root
	if id.HasPackage() {
		dir, err := w.packageDir(id.Package)
		if err != nil {
			return "", fingerprint.PathHash{}, diag.PackageDownload(err)
		}
		root = dir
	}

	path, ok := id.Path.Resolve(root)
	if !ok {
		return "", fingerprint.PathHash{}, diag.AccessDenied("")
	}
	fi, err := w.fs.Stat(path)
	if err != nil {
		return "", fingerprint.PathHash{}, diag.FromOS(err, path)
	}
	if fi.IsDir() {
		return "", fingerprint.PathHash{}, diag.IsDirectory(path)
	}
	hash, err := w.fs.Identify(path)
	if err != nil {
		return "", fingerprint.PathHash{}, diag.FromOS(err, path)
	}
	return path, hash, nil
}

// packageDir prepares spec at most once per pass.
func (w *SystemWorld) packageDir(spec source.PackageSpec) (string, error) {
	w.mu.Lock()
	if r, ok := w.pkgs[spec]; ok {
		w.mu.Unlock()
		return r.dir, r.err
	}
	w.mu.Unlock()

	span := trace.Begin(w.tracer, trace.ScopeFile, "package_prepare", 0)
	var dir string
	var err error
	if cr, ok := w.packages.(contextResolver); ok {
		dir, err = cr.PrepareContext(trace.WithSpan(context.Background(), span), spec)
	} else {
		dir, err = w.packages.Prepare(spec)
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	span.WithExtra("package", spec.String()).End(detail)

	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.pkgs[spec]; ok {
		return r.dir, r.err
	}
	w.pkgs[spec] = pkgResult{dir: dir, err: err}
	return dir, err
}

// Today returns the date of the session instant. The instant is taken on
// first use and kept until Reset.
func (w *SystemWorld) Today(offset *int) (Date, bool) {
	now := w.instant()
	var t time.Time
	if offset == nil {
		t = now.Local()
	} else {
		hours := *offset
		if hours < -24 || hours > 24 {
			return Date{}, false
		}
		t = now.UTC().Add(time.Duration(hours) * time.Hour)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

func (w *SystemWorld) instant() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.nowSet {
		w.now, w.nowSet = w.clock(), true
	}
	return w.now
}

// Reset starts a new pass: every cell re-reads on next access and
// identifiers are resolved afresh. Cached values are kept for reuse.
func (w *SystemWorld) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, slot := range w.slots {
		slot.source.reset()
		slot.file.reset()
	}
	clear(w.resolved)
	clear(w.pkgs)
	w.nowSet = false
	w.pass++
	trace.Point(w.tracer, trace.ScopePass, "reset", "", "pass", strconv.FormatUint(w.pass, 10), "slots", strconv.Itoa(len(w.slots)))
}

// Dependencies returns the system paths resolved and read in this pass,
// sorted. Stdin is not included.
func (w *SystemWorld) Dependencies() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]bool)
	out := make([]string, 0, len(w.resolved))
	for _, r := range w.resolved {
		if r.err != nil || r.path == "" || seen[r.path] {
			continue
		}
		if !r.slot.source.wasAccessed() && !r.slot.file.wasAccessed() {
			continue
		}
		seen[r.path] = true
		out = append(out, r.path)
	}
	sort.Strings(out)
	return out
}

// IsInitError reports whether err came from New.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}
