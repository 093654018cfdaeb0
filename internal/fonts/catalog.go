package fonts

import "fmt"

// Catalog is a Book plus its parallel slot list. Handle i names Slots[i].
type Catalog struct {
	Book  *Book
	Slots []*Slot
}

// Len returns the number of faces.
func (c *Catalog) Len() int {
	return len(c.Slots)
}

// Font returns the decoded face for handle i, or false if i is out of
// range or the face failed to decode.
func (c *Catalog) Font(i int) (*Font, bool) {
	if i < 0 || i >= len(c.Slots) {
		return nil, false
	}
	f, err := c.Slots[i].Get()
	if err != nil {
		return nil, false
	}
	return f, true
}

// FontErr is Font with the decode error.
func (c *Catalog) FontErr(i int) (*Font, error) {
	if i < 0 || i >= len(c.Slots) {
		return nil, fmt.Errorf("fonts: no face with handle %d", i)
	}
	return c.Slots[i].Get()
}
