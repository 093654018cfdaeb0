package source

import "testing"

func TestParsePackageSpec(t *testing.T) {
	spec, err := ParsePackageSpec("@preview/cetz:0.2.1")
	if err != nil {
		t.Fatalf("ParsePackageSpec returned error: %v", err)
	}
	want := PackageSpec{Namespace: "preview", Name: "cetz", Version: PackageVersion{0, 2, 1}}
	if spec != want {
		t.Fatalf("got %+v, want %+v", spec, want)
	}
	if spec.String() != "@preview/cetz:0.2.1" {
		t.Errorf("String() = %q", spec.String())
	}
}

func TestParsePackageSpecErrors(t *testing.T) {
	for _, in := range []string{
		"preview/cetz:0.2.1",
		"@preview:0.2.1",
		"@preview/cetz",
		"@preview/cetz:0.2",
		"@preview/1cetz:0.2.1",
		"@/cetz:0.2.1",
	} {
		if _, err := ParsePackageSpec(in); err == nil {
			t.Errorf("ParsePackageSpec(%q) expected error", in)
		}
	}
}

func TestFileIDEquality(t *testing.T) {
	spec := PackageSpec{Namespace: "preview", Name: "a", Version: PackageVersion{1, 0, 0}}
	a := NewFileID(spec, NewVirtualPath("lib.typ"))
	b := NewFileID(spec, NewVirtualPath("./lib.typ"))
	c := NewFileID(PackageSpec{}, NewVirtualPath("lib.typ"))
	if a != b {
		t.Error("ids with equal package and path must be equal")
	}
	if a == c {
		t.Error("package and project ids must differ")
	}
	if StdinID == NewFileID(PackageSpec{}, NewVirtualPath("<stdin>")) {
		t.Error("stdin id must not be constructible from a path")
	}
	if a.String() != "@preview/a:1.0.0/lib.typ" {
		t.Errorf("String() = %q", a.String())
	}
}
