package fonts

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"typster/internal/fontcache"
)

// buildCollection assembles a TTC from single-face fonts by shifting
// every table offset by the face's position.
func buildCollection(fonts ...[]byte) []byte {
	n := len(fonts)
	out := make([]byte, 12+4*n)
	copy(out, "ttcf")
	binary.BigEndian.PutUint32(out[4:], 0x00010000)
	binary.BigEndian.PutUint32(out[8:], uint32(n))
	for i, f := range fonts {
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
		base := uint32(len(out))
		binary.BigEndian.PutUint32(out[12+4*i:], base)
		cp := append([]byte(nil), f...)
		numTables := int(binary.BigEndian.Uint16(cp[4:]))
		for k := 0; k < numTables; k++ {
			rec := cp[12+16*k:]
			binary.BigEndian.PutUint32(rec[8:], binary.BigEndian.Uint32(rec[8:])+base)
		}
		out = append(out, cp...)
	}
	return out
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

type slotKey struct {
	Path  string
	Index int
}

func slotKeys(c *Catalog) []slotKey {
	out := make([]slotKey, len(c.Slots))
	for i, s := range c.Slots {
		out[i] = slotKey{s.Path(), s.Index()}
	}
	return out
}

func noEmbedded(paths ...string) Options {
	return Options{FontPaths: paths, Embedded: []EmbeddedFont{}}
}

func TestCollectionYieldsOneSlotPerFace(t *testing.T) {
	dir := t.TempDir()
	ttc := filepath.Join(dir, "family.ttc")
	writeFile(t, ttc, buildCollection(goregular.TTF, gobold.TTF, goitalic.TTF))

	cat := Search(noEmbedded(dir))
	want := []slotKey{{ttc, 0}, {ttc, 1}, {ttc, 2}}
	if diff := cmp.Diff(want, slotKeys(cat)); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	if cat.Book.Len() != 3 {
		t.Fatalf("book has %d faces", cat.Book.Len())
	}
	for i := range cat.Slots {
		if _, ok := cat.Font(i); !ok {
			t.Fatalf("face %d failed to decode", i)
		}
	}
}

func TestFaceDecodeFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	ttc := filepath.Join(dir, "family.ttc")
	data := buildCollection(goregular.TTF, gobold.TTF, goitalic.TTF)
	writeFile(t, ttc, data)

	cat := Search(noEmbedded(dir))
	if cat.Len() != 3 {
		t.Fatalf("catalog has %d faces", cat.Len())
	}

	// Point face 1 at the collection header; it no longer decodes.
	broken := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(broken[16:], 0)
	writeFile(t, ttc, broken)

	if _, ok := cat.Font(1); ok {
		t.Fatalf("face 1 decoded from a corrupt directory")
	}
	for _, i := range []int{0, 2} {
		f, ok := cat.Font(i)
		if !ok {
			t.Fatalf("face %d affected by face 1 failure", i)
		}
		if f.Index() != i {
			t.Fatalf("face %d reports index %d", i, f.Index())
		}
	}
	// memoized failure
	if _, err := cat.FontErr(1); err == nil {
		t.Fatalf("failure not cached")
	}
}

func TestCatalogDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "mono.ttf"), gomono.TTF)
	writeFile(t, filepath.Join(dir, "a.ttf"), goregular.TTF)
	writeFile(t, filepath.Join(dir, "Z.TTF"), gobold.TTF)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not a font"))
	writeFile(t, filepath.Join(dir, "broken.otf"), []byte("garbage garbage garbage"))

	first := slotKeys(Search(noEmbedded(dir)))
	second := slotKeys(Search(noEmbedded(dir)))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("catalog order changed (-first +second):\n%s", diff)
	}
	want := []slotKey{
		{filepath.Join(dir, "Z.TTF"), 0},
		{filepath.Join(dir, "a.ttf"), 0},
		{filepath.Join(dir, "b", "mono.ttf"), 0},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestPriorityOrder(t *testing.T) {
	hi, lo := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(hi, "z.ttf"), goregular.TTF)
	writeFile(t, filepath.Join(lo, "a.ttf"), goregular.TTF)

	cat := Search(Options{FontPaths: []string{hi, lo}, Embedded: DefaultEmbedded()[:1]})
	keys := slotKeys(cat)
	if len(keys) != 3 {
		t.Fatalf("got %d slots", len(keys))
	}
	if keys[0].Path != filepath.Join(hi, "z.ttf") || keys[1].Path != filepath.Join(lo, "a.ttf") {
		t.Fatalf("caller priority not kept: %v", keys)
	}
	if !cat.Slots[2].Embedded() {
		t.Fatalf("embedded fonts must come last")
	}
}

func TestSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fonts", "a.ttf"), goregular.TTF)
	if err := os.Symlink(dir, filepath.Join(dir, "fonts", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	linked := filepath.Join(t.TempDir(), "linked")
	if err := os.Symlink(filepath.Join(dir, "fonts"), linked); err != nil {
		t.Fatal(err)
	}

	cat := Search(noEmbedded(linked))
	if cat.Len() != 1 {
		t.Fatalf("expected one face through the symlinked dir, got %v", slotKeys(cat))
	}
}

func TestEmbeddedSlotsResolved(t *testing.T) {
	cat := Search(Options{})
	if cat.Len() != len(DefaultEmbedded()) {
		t.Fatalf("got %d embedded faces, want %d", cat.Len(), len(DefaultEmbedded()))
	}
	for i, s := range cat.Slots {
		if !s.Embedded() {
			t.Fatalf("slot %d has a path %q", i, s.Path())
		}
		f, ok := cat.Font(i)
		if !ok {
			t.Fatalf("embedded face %d unavailable", i)
		}
		info, _ := cat.Book.Info(i)
		if f.Info() != info {
			t.Fatalf("face %d: decoded info %+v differs from catalog %+v", i, f.Info(), info)
		}
	}
	if _, ok := cat.Font(len(cat.Slots)); ok {
		t.Fatalf("out-of-range handle resolved")
	}
}

func TestSelectRoundTrip(t *testing.T) {
	cat := Search(Options{})
	for i := 0; i < cat.Book.Len(); i++ {
		info, _ := cat.Book.Info(i)
		id, ok := cat.Book.Select(info.Family, info.Variant)
		if !ok {
			t.Fatalf("family %q not selectable", info.Family)
		}
		got, _ := cat.Book.Info(id)
		if got.Variant != info.Variant {
			t.Fatalf("Select(%q, %v) = %v", info.Family, info.Variant, got.Variant)
		}
	}
}

func TestIndexSkipsRescan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ttf"), goregular.TTF)
	idx, err := fontcache.Open(filepath.Join(t.TempDir(), "fonts.mp"))
	if err != nil {
		t.Fatal(err)
	}

	opts := noEmbedded(dir)
	opts.Index = idx
	first := Search(opts)
	if idx.Len() != 1 {
		t.Fatalf("index has %d entries", idx.Len())
	}
	second := Search(opts)
	a, _ := first.Book.Info(0)
	b, _ := second.Book.Info(0)
	if a != b {
		t.Fatalf("indexed info %+v differs from scanned %+v", b, a)
	}
}

func TestNewFaceRange(t *testing.T) {
	if _, err := New(goregular.TTF, 0); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := New(goregular.TTF, 1); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if _, err := New([]byte("nope"), 0); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestIsFontFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.ttf": true, "b.OTF": true, "c.TtC": true, "d.otc": true,
		"e.woff": false, "ttf": false, "f.ttf.bak": false,
	} {
		if got := IsFontFile(name); got != want {
			t.Errorf("IsFontFile(%q) = %v", name, got)
		}
	}
}

func TestUnusableInputsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "garbage.ttf"), []byte("not a font"))
	writeFile(t, filepath.Join(dir, "empty.otf"), nil)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("skip me"))
	writeFile(t, filepath.Join(dir, "good.ttf"), gobold.TTF)

	cat := Search(noEmbedded(filepath.Join(dir, "missing"), dir))
	want := []slotKey{{filepath.Join(dir, "good.ttf"), 0}}
	if diff := cmp.Diff(want, slotKeys(cat)); diff != "" {
		t.Fatalf("slots (-want +got):\n%s", diff)
	}
}
