package kquant

import (
	"image/color"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// A Palette is an ordered list of colors.
type Palette []Color

// Index finds the index of the palette entry closest to c
// by scanning every entry. Ties go to the lowest index.
func (p Palette) Index(c Color) int {
	best := 0
	bestDist := math.MaxInt
	for i, x := range p {
		if d := x.DistSquared(c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Colors converts the palette to a standard color.Palette.
func (p Palette) Colors() color.Palette {
	res := make(color.Palette, len(p))
	for i, c := range p {
		res[i] = c
	}
	return res
}

// Hex formats every entry as #rrggbb.
func (p Palette) Hex() []string {
	res := make([]string, len(p))
	for i, c := range p {
		res[i] = c.Hex()
	}
	return res
}

// DistinctColors is the set of colors present in an image.
type DistinctColors struct {
	set *roaring.Bitmap

	// First lists each color once, in the order it was
	// first seen.
	First []Color
}

// NewDistinctColors collects the distinct colors of a
// pixel sequence.
func NewDistinctColors(pixels []Color) *DistinctColors {
	d := &DistinctColors{set: roaring.New()}
	for _, c := range pixels {
		if d.set.CheckedAdd(c.pack()) {
			d.First = append(d.First, c)
		}
	}
	return d
}

// Len returns the number of distinct colors.
func (d *DistinctColors) Len() int {
	return int(d.set.GetCardinality())
}

// Contains checks if the color is in the set.
func (d *DistinctColors) Contains(c Color) bool {
	return d.set.Contains(c.pack())
}

// sorted lists the distinct colors ordered by their packed
// 0xRRGGBB value.
func (d *DistinctColors) sorted() Palette {
	res := make(Palette, 0, d.Len())
	it := d.set.Iterator()
	for it.HasNext() {
		res = append(res, unpackColor(it.Next()))
	}
	return res
}
