//go:build !unix

package fingerprint

import (
	"os"
	"path/filepath"
)

// Identify hashes the canonical absolute path of the object at path.
// Without inode numbers, hard links are not unified on this platform.
func Identify(path string) (PathHash, error) {
	if _, err := os.Stat(path); err != nil {
		return PathHash{}, err
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return PathHash{}, err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return PathHash{}, err
	}
	return PathHash(OfStrings("path", abs)), nil
}
