package kquant

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// A Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// NewColor converts any color.Color to a Color, dropping
// the alpha channel.
func NewColor(c color.Color) Color {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: nc.R, G: nc.G, B: nc.B}
}

// Channel returns the i-th channel, where 0 is R, 1 is G
// and 2 is B.
func (c Color) Channel(i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// DistSquared computes the squared Euclidean distance
// between two colors.
func (c Color) DistSquared(c1 Color) int {
	dr := int(c.R) - int(c1.R)
	dg := int(c.G) - int(c1.G)
	db := int(c.B) - int(c1.B)
	return dr*dr + dg*dg + db*db
}

// Sub computes the signed per-channel difference c-c1.
func (c Color) Sub(c1 Color) Vector3 {
	return Vector3{
		X: int(c.R) - int(c1.R),
		Y: int(c.G) - int(c1.G),
		Z: int(c.B) - int(c1.B),
	}
}

// AddClamped adds v to c, clamping every channel to
// [0, 255].
func (c Color) AddClamped(v Vector3) Color {
	return Color{
		R: clampChannel(int(c.R) + v.X),
		G: clampChannel(int(c.G) + v.Y),
		B: clampChannel(int(c.B) + v.Z),
	}
}

// RGBA implements color.Color for an opaque color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func (c Color) pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpackColor(x uint32) Color {
	return Color{R: uint8(x >> 16), G: uint8(x >> 8), B: uint8(x)}
}

func clampChannel(x int) uint8 {
	if x < 0 {
		return 0
	} else if x > 0xff {
		return 0xff
	}
	return uint8(x)
}

// A Vector3 is a signed, unclamped per-channel color
// correction.
type Vector3 struct {
	X, Y, Z int
}

// Scale multiplies the vector by num/den, truncating each
// component toward zero.
func (v Vector3) Scale(num, den int) Vector3 {
	return Vector3{
		X: v.X * num / den,
		Y: v.Y * num / den,
		Z: v.Z * num / den,
	}
}

// IsZero checks if every component is zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// A Group accumulates the colors of a cluster of pixels.
type Group struct {
	Sum [3]float64
	N   int
}

// Add accumulates a color.
func (g *Group) Add(c Color) {
	g.Sum[0] += float64(c.R)
	g.Sum[1] += float64(c.G)
	g.Sum[2] += float64(c.B)
	g.N++
}

// Merge adds the contents of g1 to g.
func (g *Group) Merge(g1 *Group) {
	for i, x := range g1.Sum {
		g.Sum[i] += x
	}
	g.N += g1.N
}

// Clear empties the group.
func (g *Group) Clear() {
	*g = Group{}
}

// Mean computes the truncated mean color of the group.
//
// The second return value is false if the group is empty.
func (g *Group) Mean() (Color, bool) {
	if g.N == 0 {
		return Color{}, false
	}
	n := float64(g.N)
	return Color{
		R: uint8(g.Sum[0] / n),
		G: uint8(g.Sum[1] / n),
		B: uint8(g.Sum[2] / n),
	}, true
}
