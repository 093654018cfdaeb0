package world_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"typster/internal/diag"
	"typster/internal/fingerprint"
	"typster/internal/fonts"
	"typster/internal/packages"
	"typster/internal/source"
	"typster/internal/testkit"
	"typster/internal/world"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func emptyCatalog() *fonts.Catalog {
	return &fonts.Catalog{Book: fonts.NewBook()}
}

type fixture struct {
	root string
	fs   *testkit.CountingFS
	w    *world.SystemWorld
}

func newFixture(t *testing.T, files map[string]string, mutate ...func(*world.Options)) *fixture {
	t.Helper()
	root := realDir(t)
	for name, content := range files {
		write(t, filepath.Join(root, name), content)
	}
	f := &fixture{root: root, fs: testkit.NewCountingFS()}
	opts := world.Options{
		Input:    filepath.Join(root, "main.typ"),
		Fonts:    emptyCatalog(),
		FS:       f.fs,
		Packages: packages.NewStorage(packages.Options{DataDir: filepath.Join(root, ".data"), CacheDir: filepath.Join(root, ".cache"), Downloader: testkit.NewDownloader()}),
	}
	for _, m := range mutate {
		m(&opts)
	}
	w, err := world.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.w = w
	return f
}

func id(p string) source.FileID {
	return source.NewFileID(source.PackageSpec{}, source.NewVirtualPath(p))
}

func TestMainSourceMatchesFile(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "= Hello\n"})
	if got := f.w.MainID(); got != id("/main.typ") {
		t.Fatalf("MainID = %v", got)
	}
	src, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}
	if src.Text() != "= Hello\n" {
		t.Fatalf("text = %q", src.Text())
	}
	if src.ID() != f.w.MainID() {
		t.Fatalf("source id = %v", src.ID())
	}
	if f.w.Root() != f.root {
		t.Fatalf("root = %q, want %q", f.w.Root(), f.root)
	}
}

func TestOneReadPerPass(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "main", "a.typ": "a"})
	path := filepath.Join(f.root, "a.typ")

	for range 3 {
		if _, err := f.w.Source(id("/a.typ")); err != nil {
			t.Fatal(err)
		}
		if _, err := f.w.File(id("a.typ")); err != nil {
			t.Fatal(err)
		}
	}
	// source and file cells read independently
	if n := f.fs.Reads(path); n != 2 {
		t.Fatalf("reads in first pass = %d, want 2", n)
	}

	f.w.Reset()
	if _, err := f.w.Source(id("/a.typ")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.w.Source(id("/a.typ")); err != nil {
		t.Fatal(err)
	}
	if n := f.fs.Reads(path); n != 3 {
		t.Fatalf("reads after second pass = %d, want 3", n)
	}
}

func TestChangedContentUpdatesInPlace(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "old"})
	first, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}

	write(t, filepath.Join(f.root, "main.typ"), "new")
	// same pass: stale value is kept
	same, _ := f.w.Main()
	if same.Text() != "old" {
		t.Fatalf("text changed within a pass: %q", same.Text())
	}

	f.w.Reset()
	second, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatal("changed content produced a new Source")
	}
	if second.Text() != "new" || second.Generation() != 1 {
		t.Fatalf("text = %q generation = %d", second.Text(), second.Generation())
	}
}

func TestTouchWithoutChangeKeepsSource(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "same"})
	first, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(f.root, "main.typ")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	f.w.Reset()
	second, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}
	if second != first || second.Generation() != 0 {
		t.Fatalf("touch changed the source: generation %d", second.Generation())
	}
}

func TestFileErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"main.typ":    "main",
		"dir/in.typ":  "x",
		"bad.typ":     "ok \xff\xfe",
		"bom.typ":     "\xef\xbb\xbfbody",
		"nested/a.md": "a",
	})

	cases := []struct {
		name string
		id   source.FileID
		want error
	}{
		{"escape", id("/../../etc/passwd"), diag.ErrAccessDenied},
		{"directory", id("/dir"), diag.ErrIsDirectory},
		{"missing", id("/nope.typ"), diag.ErrNotFound},
		{"invalid utf-8", id("/bad.typ"), diag.ErrInvalidUTF8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.w.Source(tc.id)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Source err = %v, want %v", err, tc.want)
			}
			var fe *diag.FileError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *diag.FileError", err)
			}
		})
	}

	raw, err := f.w.File(id("/bad.typ"))
	if err != nil {
		t.Fatalf("File of non-utf-8 content: %v", err)
	}
	if !bytes.Equal(raw, []byte("ok \xff\xfe")) {
		t.Fatalf("raw = %q", raw)
	}

	src, err := f.w.Source(id("/bom.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if src.Text() != "body" {
		t.Fatalf("bom not stripped: %q", src.Text())
	}
}

func TestMissingFileRecoversNextPass(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "main"})
	if _, err := f.w.Source(id("/later.typ")); !errors.Is(err, diag.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	write(t, filepath.Join(f.root, "later.typ"), "here")
	if _, err := f.w.Source(id("/later.typ")); !errors.Is(err, diag.ErrNotFound) {
		t.Fatalf("same pass err = %v, want cached not found", err)
	}
	f.w.Reset()
	src, err := f.w.Source(id("/later.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if src.Text() != "here" {
		t.Fatalf("text = %q", src.Text())
	}
}

func TestHardLinkSharesSlot(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "main", "a.typ": "shared"})
	if err := os.Link(filepath.Join(f.root, "a.typ"), filepath.Join(f.root, "b.typ")); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}
	a, err := f.w.Source(id("/a.typ"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.w.Source(id("/b.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("hard-linked paths have distinct sources")
	}
	if a.ID() != id("/a.typ") {
		t.Fatalf("canonical id = %v, want first id", a.ID())
	}
	if f.fs.Total() != 1 {
		t.Fatalf("reads = %d, want 1", f.fs.Total())
	}
}

func packageFixture(t *testing.T, dl *testkit.Downloader) (*fixture, string) {
	t.Helper()
	var cache string
	f := newFixture(t, map[string]string{"main.typ": "main"}, func(o *world.Options) {
		cache = filepath.Join(filepath.Dir(o.Input), ".cache")
		o.Packages = packages.NewStorage(packages.Options{
			DataDir:    filepath.Join(filepath.Dir(o.Input), ".data"),
			CacheDir:   cache,
			Downloader: dl,
		})
	})
	return f, cache
}

func TestPackageDownloadedOnce(t *testing.T) {
	spec, err := source.ParsePackageSpec("@preview/example:0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	dl := testkit.NewDownloader()
	archive, err := testkit.TarGz(map[string]string{
		"typst.toml": testkit.Manifest("example", "0.1.0", "lib.typ"),
		"lib.typ":    "#let answer = 42",
		"util.typ":   "#let helper = none",
	})
	if err != nil {
		t.Fatal(err)
	}
	dl.Serve(spec, archive)
	f, cache := packageFixture(t, dl)

	lib := source.NewFileID(spec, source.NewVirtualPath("/lib.typ"))
	util := source.NewFileID(spec, source.NewVirtualPath("/util.typ"))
	for pass := range 2 {
		src, err := f.w.Source(lib)
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if src.Text() != "#let answer = 42" {
			t.Fatalf("text = %q", src.Text())
		}
		if _, err := f.w.File(util); err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		f.w.Reset()
	}
	if n := dl.Calls(spec); n != 1 {
		t.Fatalf("downloads = %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(cache, "preview", "example", "0.1.0", "lib.typ")); err != nil {
		t.Fatal(err)
	}
}

func TestMissingPackage(t *testing.T) {
	spec, _ := source.ParsePackageSpec("@preview/absent:1.0.0")
	dl := testkit.NewDownloader()
	f, cache := packageFixture(t, dl)

	for _, p := range []string{"/lib.typ", "/other.typ"} {
		_, err := f.w.Source(source.NewFileID(spec, source.NewVirtualPath(p)))
		if !errors.Is(err, diag.ErrPackageDownload) {
			t.Fatalf("%s: err = %v", p, err)
		}
		if !packages.IsNotFound(err) {
			t.Fatalf("%s: not a not-found error: %v", p, err)
		}
	}
	if n := dl.Calls(spec); n != 1 {
		t.Fatalf("downloads attempted = %d, want 1 per pass", n)
	}
	if _, err := os.Stat(filepath.Join(cache, "preview", "absent", "1.0.0")); !os.IsNotExist(err) {
		t.Fatalf("failed download left %v", err)
	}
}

func TestStdin(t *testing.T) {
	root := realDir(t)
	w, err := world.New(world.Options{
		Input: "-",
		Root:  root,
		Fonts: emptyCatalog(),
		Stdin: strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if w.MainID() != source.StdinID {
		t.Fatalf("MainID = %v", w.MainID())
	}
	for range 2 {
		src, err := w.Main()
		if err != nil {
			t.Fatal(err)
		}
		if src.Text() != "from stdin" {
			t.Fatalf("text = %q", src.Text())
		}
		w.Reset()
	}
	if deps := w.Dependencies(); len(deps) != 0 {
		t.Fatalf("stdin reported as dependency: %v", deps)
	}
}

func TestConcurrentAccess(t *testing.T) {
	files := map[string]string{"main.typ": "main"}
	for _, n := range []string{"a", "b", "c", "d"} {
		files[n+".typ"] = "content " + n
	}
	f := newFixture(t, files)

	var g errgroup.Group
	for range 16 {
		for _, n := range []string{"a", "b", "c", "d"} {
			g.Go(func() error {
				src, err := f.w.Source(id("/" + n + ".typ"))
				if err != nil {
					return err
				}
				if src.Text() != "content "+n {
					return errors.New("wrong text for " + n)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if f.fs.Total() != 4 {
		t.Fatalf("reads = %d, want 4", f.fs.Total())
	}
}

func TestTodayStableWithinPass(t *testing.T) {
	clock := time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC)
	f := newFixture(t, map[string]string{"main.typ": "main"}, func(o *world.Options) {
		o.Now = func() time.Time { return clock }
	})

	zero := 0
	got, ok := f.w.Today(&zero)
	if !ok || got != (world.Date{Year: 2024, Month: time.March, Day: 31}) {
		t.Fatalf("Today(0) = %v %v", got, ok)
	}
	plus := 2
	got, _ = f.w.Today(&plus)
	if got.String() != "2024-04-01" {
		t.Fatalf("Today(+2) = %v", got)
	}

	clock = clock.Add(48 * time.Hour)
	got, _ = f.w.Today(&zero)
	if got.Day != 31 {
		t.Fatalf("date moved within a pass: %v", got)
	}
	f.w.Reset()
	got, _ = f.w.Today(&zero)
	if got.String() != "2024-04-02" {
		t.Fatalf("after reset = %v", got)
	}

	bad := 25
	if _, ok := f.w.Today(&bad); ok {
		t.Fatal("offset 25 accepted")
	}
}

func TestNewErrors(t *testing.T) {
	root := realDir(t)
	write(t, filepath.Join(root, "proj", "main.typ"), "x")
	write(t, filepath.Join(root, "other", "main.typ"), "y")

	cases := []struct {
		name string
		opts world.Options
		want world.InitErrorKind
	}{
		{"missing input", world.Options{Input: filepath.Join(root, "none.typ")}, world.InputNotFound},
		{"missing root", world.Options{Input: filepath.Join(root, "proj", "main.typ"), Root: filepath.Join(root, "gone")}, world.RootNotFound},
		{"root is file", world.Options{Input: filepath.Join(root, "proj", "main.typ"), Root: filepath.Join(root, "other", "main.typ")}, world.RootNotFound},
		{"outside root", world.Options{Input: filepath.Join(root, "other", "main.typ"), Root: filepath.Join(root, "proj")}, world.InputOutsideRoot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.Fonts = emptyCatalog()
			_, err := world.New(tc.opts)
			var ie *world.InitError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want *InitError", err)
			}
			if ie.Kind != tc.want {
				t.Fatalf("kind = %v, want %v", ie.Kind, tc.want)
			}
			if !world.IsInitError(err) {
				t.Fatal("IsInitError = false")
			}
		})
	}
}

func TestExplicitRoot(t *testing.T) {
	root := realDir(t)
	write(t, filepath.Join(root, "chapters", "main.typ"), "x")
	write(t, filepath.Join(root, "shared.typ"), "shared")
	w, err := world.New(world.Options{
		Input: filepath.Join(root, "chapters", "main.typ"),
		Root:  root,
		Fonts: emptyCatalog(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if w.MainID() != id("/chapters/main.typ") {
		t.Fatalf("MainID = %v", w.MainID())
	}
	if _, err := w.Source(id("/shared.typ")); err != nil {
		t.Fatal(err)
	}
}

func TestLibrary(t *testing.T) {
	f1 := newFixture(t, map[string]string{"main.typ": "x"}, func(o *world.Options) {
		o.Inputs = map[string]string{"b": "2", "a": "1"}
	})
	f2 := newFixture(t, map[string]string{"main.typ": "x"}, func(o *world.Options) {
		o.Inputs = map[string]string{"a": "1", "b": "2"}
	})
	f3 := newFixture(t, map[string]string{"main.typ": "x"}, func(o *world.Options) {
		o.Inputs = map[string]string{"a": "1", "b": "3"}
	})

	lib := f1.w.Library()
	if diff := cmp.Diff([]string{"a", "b"}, lib.Inputs()); diff != "" {
		t.Fatalf("inputs (-want +got):\n%s", diff)
	}
	if v, ok := lib.Input("b"); !ok || v != "2" {
		t.Fatalf("Input(b) = %q %v", v, ok)
	}
	if lib.Hash() != f2.w.Library().Hash() {
		t.Fatal("hash depends on map order")
	}
	if lib.Hash() == f3.w.Library().Hash() {
		t.Fatal("hash ignores values")
	}
	if lib.Version().String() == "" {
		t.Fatal("empty engine version")
	}
}

func TestDependencies(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "main", "a.typ": "a", "b.typ": "b"})
	f.w.Main()
	f.w.File(id("/b.typ"))
	f.w.Source(id("/missing.typ"))

	want := []string{filepath.Join(f.root, "b.typ"), filepath.Join(f.root, "main.typ")}
	if diff := cmp.Diff(want, f.w.Dependencies()); diff != "" {
		t.Fatalf("dependencies (-want +got):\n%s", diff)
	}

	f.w.Reset()
	f.w.Source(id("/a.typ"))
	if diff := cmp.Diff([]string{filepath.Join(f.root, "a.typ")}, f.w.Dependencies()); diff != "" {
		t.Fatalf("second pass (-want +got):\n%s", diff)
	}
}

func TestEmbeddedFonts(t *testing.T) {
	root := realDir(t)
	write(t, filepath.Join(root, "main.typ"), "x")
	w, err := world.New(world.Options{
		Input:             filepath.Join(root, "main.typ"),
		IgnoreSystemFonts: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if w.Book().Len() == 0 {
		t.Fatal("no embedded fonts")
	}
	font, ok := w.Font(0)
	if !ok || font == nil {
		t.Fatal("Font(0) unavailable")
	}
	if _, ok := w.Font(w.Book().Len()); ok {
		t.Fatal("out of range handle resolved")
	}
}

func replaceByRename(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".swp"
	write(t, tmp, content)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func TestRenameOverKeepsSource(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "old"})
	first, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}

	replaceByRename(t, filepath.Join(f.root, "main.typ"), "new")
	f.w.Reset()
	second, err := f.w.Main()
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatal("replacing the file by rename produced a new Source")
	}
	if second.Text() != "new" || second.Generation() != 1 {
		t.Fatalf("text = %q generation = %d", second.Text(), second.Generation())
	}
}

func TestStdinIDWithoutStdinInput(t *testing.T) {
	f := newFixture(t, map[string]string{"main.typ": "main"}, func(o *world.Options) {
		o.Stdin = blockingReader{t}
	})
	if _, err := f.w.Source(source.StdinID); !errors.Is(err, diag.ErrNotFound) {
		t.Fatalf("Source(stdin) err = %v, want not found", err)
	}
	if _, err := f.w.File(source.StdinID); !errors.Is(err, diag.ErrNotFound) {
		t.Fatalf("File(stdin) err = %v, want not found", err)
	}
}

// blockingReader fails the test if stdin is read.
type blockingReader struct{ t *testing.T }

func (r blockingReader) Read([]byte) (int, error) {
	r.t.Error("stdin read for a file input")
	return 0, io.EOF
}

// memFS serves files from memory under absolute names, with the name as
// identity.
type memFS struct{ files fstest.MapFS }

func (m memFS) rel(name string) string {
	return strings.TrimPrefix(filepath.ToSlash(name), "/")
}

func (m memFS) Stat(name string) (fs.FileInfo, error) { return fs.Stat(m.files, m.rel(name)) }

func (m memFS) ReadFile(name string) ([]byte, error) { return fs.ReadFile(m.files, m.rel(name)) }

func (m memFS) Identify(name string) (fingerprint.PathHash, error) {
	if _, err := m.Stat(name); err != nil {
		return fingerprint.PathHash{}, err
	}
	return fingerprint.PathHash(fingerprint.OfStrings(m.rel(name))), nil
}

func TestInjectedFS(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("memory paths are slash-rooted")
	}
	mem := memFS{files: fstest.MapFS{
		"mem/proj/main.typ":       {Data: []byte("= Mem")},
		"mem/proj/chapters/a.typ": {Data: []byte("a")},
	}}
	w, err := world.New(world.Options{
		Input: "/mem/proj/main.typ",
		Fonts: emptyCatalog(),
		FS:    mem,
	})
	if err != nil {
		t.Fatal(err)
	}
	src, err := w.Main()
	if err != nil {
		t.Fatal(err)
	}
	if src.Text() != "= Mem" {
		t.Fatalf("text = %q", src.Text())
	}
	if _, err := w.Source(id("/chapters/a.typ")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Source(id("/chapters")); !errors.Is(err, diag.ErrIsDirectory) {
		t.Fatalf("err = %v, want is-directory", err)
	}
	if _, err := w.File(id("/gone.typ")); !errors.Is(err, diag.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
