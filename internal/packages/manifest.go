package packages

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"typster/internal/source"
	"typster/internal/version"
)

// ManifestName is the package manifest file at a package root.
const ManifestName = "typst.toml"

var (
	ErrPackageSectionMissing = errors.New("missing [package] section")
	ErrEntrypointMissing     = errors.New("missing package.entrypoint")
)

// Manifest is the [package] section of typst.toml.
type Manifest struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Entrypoint  string   `toml:"entrypoint"`
	Compiler    string   `toml:"compiler"`
	Authors     []string `toml:"authors"`
	License     string   `toml:"license"`
	Description string   `toml:"description"`
}

type manifestFile struct {
	Package Manifest `toml:"package"`
}

// ReadManifest parses dir/typst.toml.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	m := cfg.Package
	m.Entrypoint = strings.TrimSpace(m.Entrypoint)
	if !meta.IsDefined("package", "entrypoint") || m.Entrypoint == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrEntrypointMissing)
	}
	return m, nil
}

// Validate checks the manifest against the requested spec and the engine version.
func (m Manifest) Validate(spec source.PackageSpec) error {
	if m.Name != spec.Name {
		return fmt.Errorf("package manifest contains mismatched name %q", m.Name)
	}
	v, err := source.ParsePackageVersion(m.Version)
	if err != nil {
		return fmt.Errorf("package manifest version: %w", err)
	}
	if v != spec.Version {
		return fmt.Errorf("package manifest contains mismatched version %s", v)
	}
	if m.Compiler != "" {
		need, err := source.ParsePackageVersion(m.Compiler)
		if err != nil {
			return fmt.Errorf("package manifest compiler: %w", err)
		}
		have, err := source.ParsePackageVersion(version.EngineVersion)
		if err == nil && versionLess(have, need) {
			return fmt.Errorf("package requires compiler %s, have %s", need, have)
		}
	}
	return nil
}

func versionLess(a, b source.PackageVersion) bool {
	if a.Major != b.Major {
		return a.Major < b.Major
	}
	if a.Minor != b.Minor {
		return a.Minor < b.Minor
	}
	return a.Patch < b.Patch
}
