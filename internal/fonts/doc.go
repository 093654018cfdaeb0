// Package fonts builds the font catalog.
//
// A catalog pass walks font directories and embedded payloads, reads only
// the table headers of each face (names and the OS/2 table) and records
// one Slot per face in a Book. Full face decoding happens lazily, at most
// once per Slot, and the bytes of a font file are read at most once no
// matter how many faces it holds.
//
// Slot indices are the numeric font handles the compiler engine uses; the
// walk order is deterministic so handles are stable across runs.
package fonts
