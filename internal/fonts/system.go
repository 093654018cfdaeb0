package fonts

import (
	"os"
	"path/filepath"
	"runtime"
)

// SystemDirs returns the platform font directories, including the user's.
func SystemDirs() []string {
	home, _ := os.UserHomeDir()
	return systemDirs(runtime.GOOS, os.Getenv, home)
}

func systemDirs(goos string, getenv func(string) string, home string) []string {
	var dirs []string
	switch goos {
	case "darwin", "ios":
		dirs = []string{"/Library/Fonts", "/Network/Library/Fonts", "/System/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	case "windows":
		windir := getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs = []string{filepath.Join(windir, "Fonts")}
		for _, env := range []string{"APPDATA", "LOCALAPPDATA"} {
			if base := getenv(env); base != "" {
				dirs = append(dirs, filepath.Join(base, "Microsoft", "Windows", "Fonts"))
			}
		}
	default:
		dirs = []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if data := getenv("XDG_DATA_HOME"); data != "" {
			dirs = append(dirs, filepath.Join(data, "fonts"))
		} else if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"))
		}
	}
	return dirs
}
