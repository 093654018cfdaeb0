package fonts

import (
	"sort"

	"golang.org/x/text/cases"
)

// foldFamily builds a Caser per call; Casers are not safe for concurrent use.
func foldFamily(name string) string {
	return cases.Fold().String(name)
}

// Book is the queryable catalog view: face metadata by handle and the
// family index. Slot i of a Catalog describes Info(i).
type Book struct {
	infos    []Info
	families map[string][]int // folded family -> handles
	names    map[string]string
}

func NewBook() *Book {
	return &Book{
		families: make(map[string][]int),
		names:    make(map[string]string),
	}
}

// Push appends a face and returns its handle.
func (b *Book) Push(info Info) int {
	id := len(b.infos)
	b.infos = append(b.infos, info)
	key := foldFamily(info.Family)
	if _, ok := b.names[key]; !ok {
		b.names[key] = info.Family
	}
	b.families[key] = append(b.families[key], id)
	return id
}

// Len returns the number of faces.
func (b *Book) Len() int {
	return len(b.infos)
}

// Info returns the metadata of face i.
func (b *Book) Info(i int) (Info, bool) {
	if i < 0 || i >= len(b.infos) {
		return Info{}, false
	}
	return b.infos[i], true
}

// Families returns the display names of all families, sorted.
func (b *Book) Families() []string {
	out := make([]string, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SelectFamily returns the handles of all faces in family, in catalog order.
// The match is case-insensitive.
func (b *Book) SelectFamily(family string) []int {
	ids := b.families[foldFamily(family)]
	return append([]int(nil), ids...)
}

// Select returns the face of family closest to want, comparing style
// first, then stretch, then weight. Ties go to the earlier handle.
func (b *Book) Select(family string, want Variant) (int, bool) {
	best := -1
	var bestKey [3]int
	for _, id := range b.families[foldFamily(family)] {
		v := b.infos[id].Variant
		key := [3]int{
			v.Style.distance(want.Style),
			v.Stretch.distance(want.Stretch),
			v.Weight.distance(want.Weight),
		}
		if best < 0 || keyLess(key, bestKey) {
			best, bestKey = id, key
		}
	}
	return best, best >= 0
}

func keyLess(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
