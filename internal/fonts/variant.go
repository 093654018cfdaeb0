package fonts

import (
	"fmt"
	"strconv"
)

// Style is the slant of a face.
type Style uint8

const (
	StyleNormal Style = iota
	StyleItalic
	StyleOblique
)

func (s Style) String() string {
	switch s {
	case StyleItalic:
		return "italic"
	case StyleOblique:
		return "oblique"
	}
	return "normal"
}

// distance orders style fallbacks: exact, then italic<->oblique, then normal.
func (s Style) distance(other Style) int {
	switch {
	case s == other:
		return 0
	case s != StyleNormal && other != StyleNormal:
		return 1
	}
	return 2
}

// Weight is the OS/2 weight class, clamped to 100..900.
type Weight uint16

const (
	WeightThin    Weight = 100
	WeightLight   Weight = 300
	WeightRegular Weight = 400
	WeightMedium  Weight = 500
	WeightBold    Weight = 700
	WeightBlack   Weight = 900
)

// NewWeight clamps n into the valid range.
func NewWeight(n uint16) Weight {
	return Weight(min(max(n, 100), 900))
}

func (w Weight) String() string {
	return strconv.Itoa(int(w))
}

func (w Weight) distance(other Weight) int {
	d := int(w) - int(other)
	if d < 0 {
		return -d
	}
	return d
}

// Stretch is the width of a face in thousandths of normal width (1000).
type Stretch uint16

const (
	StretchUltraCondensed Stretch = 500
	StretchCondensed      Stretch = 750
	StretchNormal         Stretch = 1000
	StretchExpanded       Stretch = 1250
	StretchUltraExpanded  Stretch = 2000
)

// stretchByClass maps OS/2 width classes 1..9.
var stretchByClass = [...]Stretch{500, 625, 750, 875, 1000, 1125, 1250, 1500, 2000}

// StretchFromWidthClass converts an OS/2 width class; out-of-range
// classes are treated as normal.
func StretchFromWidthClass(class uint16) Stretch {
	if class < 1 || int(class) > len(stretchByClass) {
		return StretchNormal
	}
	return stretchByClass[class-1]
}

func (s Stretch) String() string {
	return fmt.Sprintf("%g%%", float64(s)/10)
}

func (s Stretch) distance(other Stretch) int {
	d := int(s) - int(other)
	if d < 0 {
		return -d
	}
	return d
}

// Variant is the style, weight and stretch of one face.
type Variant struct {
	Style   Style
	Weight  Weight
	Stretch Stretch
}

// DefaultVariant is normal/400/100%.
var DefaultVariant = Variant{Style: StyleNormal, Weight: WeightRegular, Stretch: StretchNormal}

func (v Variant) String() string {
	return v.Style.String() + " " + v.Weight.String() + " " + v.Stretch.String()
}

// less orders variants by style, then weight, then stretch.
func (v Variant) less(o Variant) bool {
	if v.Style != o.Style {
		return v.Style < o.Style
	}
	if v.Weight != o.Weight {
		return v.Weight < o.Weight
	}
	return v.Stretch < o.Stretch
}

// Info is the catalog metadata of one face.
type Info struct {
	Family  string
	Variant Variant
}
