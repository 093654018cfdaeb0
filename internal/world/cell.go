package world

import (
	"sync"

	"typster/internal/fingerprint"
)

type cellState uint8

const (
	cellEmpty cellState = iota
	cellComputed
	cellFailed
)

// slotCell is a lazily populated, fingerprint-revalidated value.
//
// Per pass the first get loads bytes; later gets in the same pass return
// the stored outcome without loading. derive runs only when the loaded
// bytes hash differently from the last derivation. The last successful
// value survives failures so an in-place update can reuse it.
type slotCell[T any] struct {
	mu       sync.Mutex
	state    cellState
	accessed bool
	value    T // last successful value
	hasValue bool
	err      error
	fp       fingerprint.Fingerprint
	fpValid  bool // fp describes the bytes behind value or err
}

// deriveFunc builds T from data; prev is the last successful value.
type deriveFunc[T any] func(data []byte, prev T, hasPrev bool) (T, error)

func (c *slotCell[T]) get(load func() ([]byte, error), derive deriveFunc[T]) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if c.accessed {
		if c.state == cellComputed {
			return c.value, nil
		}
		return zero, c.err
	}
	c.accessed = true

	data, err := load()
	if err != nil {
		c.state, c.err, c.fpValid = cellFailed, err, false
		return zero, err
	}

	fp := fingerprint.Of(data)
	if c.fpValid && fp == c.fp {
		switch c.state {
		case cellComputed:
			return c.value, nil
		case cellFailed:
			return zero, c.err
		}
	}

	v, err := derive(data, c.value, c.hasValue)
	c.fp, c.fpValid = fp, true
	if err != nil {
		c.state, c.err = cellFailed, err
		return zero, err
	}
	c.state, c.err = cellComputed, nil
	c.value, c.hasValue = v, true
	return v, nil
}

// reset starts a new pass.
func (c *slotCell[T]) reset() {
	c.mu.Lock()
	c.accessed = false
	c.mu.Unlock()
}

func (c *slotCell[T]) wasAccessed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessed
}
