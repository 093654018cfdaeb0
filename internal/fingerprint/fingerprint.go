package fingerprint

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the width of both hash kinds in bytes.
const Size = 16

// Fingerprint is the truncated BLAKE3 digest of a byte buffer.
type Fingerprint [Size]byte

// Of fingerprints data.
func Of(data []byte) Fingerprint {
	sum := blake3.Sum256(data)
	var fp Fingerprint
	copy(fp[:], sum[:Size])
	return fp
}

// OfStrings fingerprints a sequence of strings; each is length-prefixed so
// that ("ab", "c") and ("a", "bc") differ.
func OfStrings(parts ...string) Fingerprint {
	h := blake3.New()
	var n [8]byte
	for _, p := range parts {
		putUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(p))
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// IsZero reports whether fp is the zero value.
func (fp Fingerprint) IsZero() bool {
	return fp == Fingerprint{}
}

func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// PathHash identifies a filesystem object independent of the path used to reach it.
type PathHash [Size]byte

func (h PathHash) String() string {
	return hex.EncodeToString(h[:])
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}
