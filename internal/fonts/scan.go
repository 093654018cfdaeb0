package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/sfnt/os2"
)

// face is the catalog metadata of one face and its collection index.
type face struct {
	index int
	info  Info
}

// scanFaces reads the metadata of every face in r without decoding
// outlines. Faces whose headers cannot be read are skipped and reported in
// the joined error; the remaining faces are still returned.
func scanFaces(r io.ReaderAt) ([]face, error) {
	offsets, err := faceOffsets(r)
	if err != nil {
		return nil, err
	}
	coll, err := sfnt.ParseCollectionReaderAt(r)
	if err != nil {
		return nil, err
	}

	n := min(coll.NumFonts(), len(offsets))
	out := make([]face, 0, n)
	var errs []error
	for i := 0; i < n; i++ {
		f, err := coll.Font(i)
		if err != nil {
			errs = append(errs, fmt.Errorf("face %d: %w", i, err))
			continue
		}
		info, err := faceInfo(r, f, offsets[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("face %d: %w", i, err))
			continue
		}
		out = append(out, face{index: i, info: info})
	}
	return out, errors.Join(errs...)
}

func faceInfo(r io.ReaderAt, f *sfnt.Font, off uint32) (Info, error) {
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDTypographicFamily)
	if err != nil || family == "" {
		family, err = f.Name(&buf, sfnt.NameIDFamily)
	}
	if err != nil {
		return Info{}, fmt.Errorf("family name: %w", err)
	}
	family = strings.TrimSpace(family)
	if family == "" {
		return Info{}, errors.New("empty family name")
	}

	sub, err := f.Name(&buf, sfnt.NameIDTypographicSubfamily)
	if err != nil || sub == "" {
		sub, _ = f.Name(&buf, sfnt.NameIDSubfamily)
	}
	sub = strings.ToLower(sub)

	v := DefaultVariant
	var italic, oblique, hasOS2 bool
	if toc, err := readTableDir(r, off); err == nil {
		if data, ok, err := readTable(r, toc, "OS/2"); ok && err == nil {
			if info, err := os2.Read(bytes.NewReader(data)); err == nil {
				hasOS2 = true
				v.Weight = NewWeight(uint16(info.WeightClass))
				v.Stretch = StretchFromWidthClass(uint16(info.WidthClass))
				italic = info.IsItalic
				oblique = info.IsOblique
			}
		}
	}
	if !hasOS2 && strings.Contains(sub, "bold") {
		v.Weight = WeightBold
	}

	switch {
	case italic || strings.Contains(sub, "italic"):
		v.Style = StyleItalic
	case oblique || strings.Contains(sub, "oblique") || strings.Contains(sub, "slanted"):
		v.Style = StyleOblique
	}

	return Info{Family: family, Variant: v}, nil
}
