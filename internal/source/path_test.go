package source

import (
	"path/filepath"
	"testing"
)

func TestNewVirtualPath(t *testing.T) {
	tests := []struct {
		in   string
		want VirtualPath
	}{
		{"main.typ", "/main.typ"},
		{"/a/./b/../c.typ", "/a/c.typ"},
		{"a\\b.typ", "/a/b.typ"},
		{"../../etc/passwd", "/../../etc/passwd"},
		{"a/../../x", "/../x"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := NewVirtualPath(tt.in); got != tt.want {
			t.Errorf("NewVirtualPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveRejectsEscape(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	for _, p := range []string{"../../etc/passwd", "a/../../b", ".."} {
		if got, ok := NewVirtualPath(p).Resolve(root); ok {
			t.Errorf("Resolve(%q) = %q, expected access to be denied", p, got)
		}
	}

	got, ok := NewVirtualPath("sub/../file.typ").Resolve(root)
	if !ok {
		t.Fatal("expected path inside root to resolve")
	}
	if want := filepath.Join(root, "file.typ"); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestWithinRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	vpath, ok := WithinRoot(filepath.Join(root, "ch", "intro.typ"), root)
	if !ok || vpath != "/ch/intro.typ" {
		t.Fatalf("WithinRoot = %q, %v", vpath, ok)
	}
	if _, ok := WithinRoot(filepath.Join(filepath.Dir(root), "other.typ"), root); ok {
		t.Fatal("expected path outside root to be rejected")
	}
}
