package packages

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDir is where locally installed packages live.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return dataDir(runtime.GOOS, os.Getenv, home)
}

func dataDir(goos string, getenv func(string) string, home string) string {
	var base string
	switch goos {
	case "windows":
		base = getenv("APPDATA")
	case "darwin", "ios":
		if home != "" {
			base = filepath.Join(home, "Library", "Application Support")
		}
	default:
		base = getenv("XDG_DATA_HOME")
		if base == "" && home != "" {
			base = filepath.Join(home, ".local", "share")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "typst", "packages")
}

// DefaultCacheDir is where downloaded packages are kept.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "typst", "packages")
}
