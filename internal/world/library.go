package world

import (
	"sort"
	"time"

	"typster/internal/fingerprint"
	"typster/internal/source"
)

// Library is the standard library definition handed to the engine. It is
// built once per world and never changes.
type Library struct {
	inputs  map[string]string
	version source.PackageVersion
	hash    fingerprint.Fingerprint
}

func newLibrary(inputs map[string]string, engine source.PackageVersion) *Library {
	l := &Library{inputs: make(map[string]string, len(inputs)), version: engine}
	keys := make([]string, 0, len(inputs))
	for k, v := range inputs {
		l.inputs[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, 2*len(keys)+1)
	parts = append(parts, engine.String())
	for _, k := range keys {
		parts = append(parts, k, inputs[k])
	}
	l.hash = fingerprint.OfStrings(parts...)
	return l
}

// Input returns the named input value.
func (l *Library) Input(name string) (string, bool) {
	v, ok := l.inputs[name]
	return v, ok
}

// Inputs returns the input names, sorted.
func (l *Library) Inputs() []string {
	keys := make([]string, 0, len(l.inputs))
	for k := range l.inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Version is the engine version exposed to documents.
func (l *Library) Version() source.PackageVersion {
	return l.version
}

// Hash identifies the library contents, for engine-side caches.
func (l *Library) Hash() fingerprint.Fingerprint {
	return l.hash
}

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}
