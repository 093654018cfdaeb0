package fonts

import (
	"bytes"
	"fmt"

	"golang.org/x/image/font/sfnt"
)

// Font is a fully decoded face.
type Font struct {
	data  []byte
	index int
	face  *sfnt.Font
	info  Info
}

// New decodes face index of the font or collection in data.
func New(data []byte, index int) (*Font, error) {
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= coll.NumFonts() {
		return nil, fmt.Errorf("fonts: face index %d out of range (%d faces)", index, coll.NumFonts())
	}
	f, err := coll.Font(index)
	if err != nil {
		return nil, fmt.Errorf("fonts: face %d: %w", index, err)
	}
	r := bytes.NewReader(data)
	offsets, err := faceOffsets(r)
	if err != nil {
		return nil, err
	}
	if index >= len(offsets) {
		return nil, fmt.Errorf("fonts: face index %d out of range (%d faces)", index, len(offsets))
	}
	info, err := faceInfo(r, f, offsets[index])
	if err != nil {
		return nil, fmt.Errorf("fonts: face %d: %w", index, err)
	}
	return &Font{data: data, index: index, face: f, info: info}, nil
}

// Data returns the bytes of the whole font file. Callers must not modify it.
func (f *Font) Data() []byte { return f.data }

// Index returns the face index within its collection.
func (f *Font) Index() int { return f.index }

// Face returns the parsed face.
func (f *Font) Face() *sfnt.Font { return f.face }

func (f *Font) Info() Info { return f.info }

// UnitsPerEm reports the design units of the face.
func (f *Font) UnitsPerEm() int {
	return int(f.face.UnitsPerEm())
}
