package fonts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
)

const (
	scalerTrueType = 0x00010000
	scalerCFF      = 0x4F54544F // "OTTO"
	scalerApple    = 0x74727565 // "true"
	tagCollection  = 0x74746366 // "ttcf"

	maxFaces  = 1 << 12
	maxTables = 280
)

var errNotFont = errors.New("fonts: not an sfnt font or collection")

type tableRecord struct {
	offset uint32
	length uint32
}

// faceOffsets returns the offset of every face's table directory.
// A single font has one face at offset 0.
func faceOffsets(r io.ReaderAt) ([]uint32, error) {
	var buf [12]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		return nil, err
	}
	switch binary.BigEndian.Uint32(buf[:]) {
	case scalerTrueType, scalerCFF, scalerApple:
		return []uint32{0}, nil
	case tagCollection:
	default:
		return nil, errNotFont
	}

	n := binary.BigEndian.Uint32(buf[8:])
	if n == 0 || n > maxFaces {
		return nil, fmt.Errorf("fonts: unsupported number of faces %d", n)
	}
	count, err := safecast.Conv[int](n)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 4*count)
	if _, err := r.ReadAt(raw, 12); err != nil {
		return nil, fmt.Errorf("fonts: collection header: %w", err)
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = binary.BigEndian.Uint32(raw[4*i:])
	}
	return offsets, nil
}

// readTableDir reads the table directory of the face at off.
func readTableDir(r io.ReaderAt, off uint32) (map[string]tableRecord, error) {
	var buf [16]byte
	if _, err := r.ReadAt(buf[:6], int64(off)); err != nil {
		return nil, err
	}
	switch binary.BigEndian.Uint32(buf[:]) {
	case scalerTrueType, scalerCFF, scalerApple:
	default:
		return nil, errNotFont
	}
	numTables := int(binary.BigEndian.Uint16(buf[4:]))
	if numTables > maxTables {
		return nil, errors.New("fonts: too many tables")
	}

	toc := make(map[string]tableRecord, numTables)
	for i := 0; i < numTables; i++ {
		if _, err := r.ReadAt(buf[:], int64(off)+12+int64(i)*16); err != nil {
			return nil, err
		}
		toc[string(buf[:4])] = tableRecord{
			offset: binary.BigEndian.Uint32(buf[8:]),
			length: binary.BigEndian.Uint32(buf[12:]),
		}
	}
	return toc, nil
}

// readTable returns the bytes of one table; ok is false if the face has none.
func readTable(r io.ReaderAt, toc map[string]tableRecord, tag string) (data []byte, ok bool, err error) {
	rec, ok := toc[tag]
	if !ok {
		return nil, false, nil
	}
	data = make([]byte, rec.length)
	n, err := r.ReadAt(data, int64(rec.offset))
	if n < len(data) && err != nil {
		return nil, true, err
	}
	return data[:n], true, nil
}
