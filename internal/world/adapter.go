package world

import (
	"typster/internal/fonts"
	"typster/internal/source"
)

// World is the capability set the compiler engine consumes.
type World interface {
	// Library returns the standard library definition.
	Library() *Library
	// Book returns the font catalog metadata.
	Book() *fonts.Book
	// MainID identifies the entry file.
	MainID() source.FileID
	// Source returns a file as decoded program text.
	Source(id source.FileID) (*source.Source, error)
	// File returns a file as raw bytes.
	File(id source.FileID) ([]byte, error)
	// Font returns the face with the given handle, or false if it cannot
	// be decoded.
	Font(index int) (*fonts.Font, bool)
	// Today returns the current date, in local time when offset is nil or
	// at a fixed offset in hours from UTC.
	Today(offset *int) (Date, bool)
}

var _ World = (*SystemWorld)(nil)
