package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Family lists the variants of one family.
type Family struct {
	Name     string
	Variants []Variant
}

// ListFonts groups the catalog by family. Families are sorted by name and
// variants by style, weight and stretch.
func ListFonts(b *Book) []Family {
	names := b.Families()
	out := make([]Family, 0, len(names))
	for _, name := range names {
		ids := b.SelectFamily(name)
		variants := make([]Variant, 0, len(ids))
		for _, id := range ids {
			info, _ := b.Info(id)
			variants = append(variants, info.Variant)
		}
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].less(variants[j])
		})
		out = append(out, Family{Name: name, Variants: variants})
	}
	return out
}

// ExportFonts writes the payloads into dir and returns the written paths.
// Each file is replaced atomically.
func ExportFonts(dir string, fonts []EmbeddedFont) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(fonts))
	for _, ef := range fonts {
		if ef.Name == "" || filepath.Base(ef.Name) != ef.Name {
			return paths, fmt.Errorf("fonts: invalid export name %q", ef.Name)
		}
		p := filepath.Join(dir, ef.Name)
		if err := writeAtomic(p, ef.Data); err != nil {
			return paths, fmt.Errorf("fonts: export %s: %w", ef.Name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// CreateTemp creates 0600
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
