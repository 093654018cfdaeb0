package source

import (
	"path/filepath"
	"strings"
)

// NewVirtualPath normalizes p into a rooted virtual path.
// "." components are dropped and ".." cancels the previous component; a ".."
// with nothing left to cancel is kept so that Resolve can reject it.
func NewVirtualPath(p string) VirtualPath {
	p = strings.ReplaceAll(p, "\\", "/")
	var out []string
	for _, c := range strings.Split(p, "/") {
		switch c {
		case "", ".":
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return VirtualPath("/" + strings.Join(out, "/"))
}

// WithinRoot returns the virtual path of the system path within root.
// It fails if path is not inside root.
func WithinRoot(path, root string) (VirtualPath, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return NewVirtualPath(filepath.ToSlash(rel)), true
}

// Resolve joins the virtual path onto root. It reports false if the path
// would climb above root through "..". Symlinks below root are not inspected.
func (p VirtualPath) Resolve(root string) (string, bool) {
	var parts []string
	for _, c := range strings.Split(string(p), "/") {
		switch c {
		case "", ".":
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, c)
		}
	}
	return filepath.Join(append([]string{root}, parts...)...), true
}

// FileName returns the last component of the path.
func (p VirtualPath) FileName() string {
	s := string(p)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (p VirtualPath) String() string {
	return string(p)
}
