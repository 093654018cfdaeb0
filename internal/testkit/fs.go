package testkit

import (
	"io/fs"
	"os"
	"sync"

	"typster/internal/fingerprint"
)

// CountingFS reads from the OS and counts ReadFile calls per path.
type CountingFS struct {
	mu    sync.Mutex
	reads map[string]int
}

func NewCountingFS() *CountingFS {
	return &CountingFS{reads: make(map[string]int)}
}

func (c *CountingFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (c *CountingFS) ReadFile(name string) ([]byte, error) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
	return os.ReadFile(name)
}

func (c *CountingFS) Identify(name string) (fingerprint.PathHash, error) {
	return fingerprint.Identify(name)
}

// Reads returns the read count for name.
func (c *CountingFS) Reads(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name]
}

// Total returns the read count across all paths.
func (c *CountingFS) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.reads {
		n += r
	}
	return n
}
