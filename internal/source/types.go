package source

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// VirtualPath is a slash-separated path relative to a project or package root.
	VirtualPath string // всегда начинается с "/" (кроме StdinID)
)

// PackageVersion is a major.minor.patch package version.
type PackageVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParsePackageVersion parses a version of the form "1.2.3".
func ParsePackageVersion(s string) (PackageVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return PackageVersion{}, fmt.Errorf("version %q must have the form major.minor.patch", s)
	}
	var out [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return PackageVersion{}, fmt.Errorf("version %q: invalid component %q", s, part)
		}
		out[i] = uint32(n)
	}
	return PackageVersion{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}

func (v PackageVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PackageSpec names one version of a package: @namespace/name:version.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   PackageVersion
}

// ParsePackageSpec parses "@namespace/name:version".
func ParsePackageSpec(s string) (PackageSpec, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "@")
	if !ok {
		return PackageSpec{}, fmt.Errorf("package specification %q must start with '@'", s)
	}
	namespace, rest, ok := strings.Cut(rest, "/")
	if !ok || namespace == "" {
		return PackageSpec{}, fmt.Errorf("package specification %q is missing a namespace", s)
	}
	name, ver, ok := strings.Cut(rest, ":")
	if !ok || name == "" {
		return PackageSpec{}, fmt.Errorf("package specification %q is missing a name or version", s)
	}
	if !isIdent(namespace) {
		return PackageSpec{}, fmt.Errorf("package specification %q: %q is not a valid namespace", s, namespace)
	}
	if !isIdent(name) {
		return PackageSpec{}, fmt.Errorf("package specification %q: %q is not a valid name", s, name)
	}
	version, err := ParsePackageVersion(ver)
	if err != nil {
		return PackageSpec{}, fmt.Errorf("package specification %q: %w", s, err)
	}
	return PackageSpec{Namespace: namespace, Name: name, Version: version}, nil
}

// IsZero reports whether the spec is unset.
func (s PackageSpec) IsZero() bool {
	return s == PackageSpec{}
}

func (s PackageSpec) String() string {
	if s.IsZero() {
		return ""
	}
	return "@" + s.Namespace + "/" + s.Name + ":" + s.Version.String()
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return s != ""
}

// FileID names a logical file: an optional package and a virtual path in it.
// FileIDs are comparable and used directly as map keys.
type FileID struct {
	Package PackageSpec
	Path    VirtualPath
}

// StdinID is the identifier of the document read from standard input.
// NewVirtualPath never produces its path, so it cannot collide with a real file.
var StdinID = FileID{Path: "<stdin>"}

// NewFileID builds an identifier for path within pkg (zero pkg means the project).
func NewFileID(pkg PackageSpec, path VirtualPath) FileID {
	return FileID{Package: pkg, Path: path}
}

// HasPackage reports whether the id lives in a package rather than the project.
func (id FileID) HasPackage() bool {
	return !id.Package.IsZero()
}

func (id FileID) String() string {
	if id.HasPackage() {
		return id.Package.String() + string(id.Path)
	}
	return string(id.Path)
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
