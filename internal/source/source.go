package source

import (
	"errors"
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Source is the decoded text of a file together with its line index.
//
// A Source keeps its identity across edits: Replace updates the text in place
// and bumps Generation, so holders of the pointer observe the new content.
type Source struct {
	mu         sync.RWMutex
	id         FileID
	text       string
	lineIdx    []uint32
	generation uint64
}

// NewSource creates a Source for id with the given text.
func NewSource(id FileID, text string) *Source {
	checkLen(text)
	return &Source{
		id:      id,
		text:    text,
		lineIdx: buildLineIndex(text),
	}
}

// ErrTooLarge means a text does not fit the uint32 offsets of the line index.
var ErrTooLarge = errors.New("source text exceeds 4 GiB")

// CheckText reports whether text can back a Source. NewSource and Replace
// panic on texts it rejects.
func CheckText(text string) error {
	return checkSize(len(text))
}

func checkSize(n int) error {
	if _, err := safecast.Conv[uint32](n); err != nil {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	return nil
}

func checkLen(text string) {
	if err := CheckText(text); err != nil {
		panic(err)
	}
}

// ID returns the identifier the source was created for.
func (s *Source) ID() FileID {
	return s.id
}

// Text returns the current text.
func (s *Source) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Len returns the text length in bytes.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.text)
}

// Generation counts how many times Replace changed the text.
func (s *Source) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Replace swaps in new text. It reports whether anything changed.
func (s *Source) Replace(text string) bool {
	checkLen(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == text {
		return false
	}
	s.text = text
	s.lineIdx = buildLineIndex(text)
	s.generation++
	return true
}

// LineCount returns the number of lines; an empty text has one line.
func (s *Source) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lineIdx) + 1
}

// Line returns line n (1-based) without its newline, or "" if it does not exist.
func (s *Source) Line(n int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 1 || n > len(s.lineIdx)+1 {
		return ""
	}
	start := 0
	if n > 1 {
		start = int(s.lineIdx[n-2]) + 1
	}
	end := len(s.text)
	if n-1 < len(s.lineIdx) {
		end = int(s.lineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return s.text[start:end]
}

// LineCol converts a byte offset into a line/column position.
func (s *Source) LineCol(offset uint32) LineCol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toLineCol(s.lineIdx, offset)
}
