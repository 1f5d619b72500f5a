package kquant

// A KernelTap is one neighbor of an error diffusion
// kernel, with a weight of Num/Den.
type KernelTap struct {
	DX, DY   int
	Num, Den int
}

// FloydSteinberg is the Floyd-Steinberg error diffusion
// kernel.
var FloydSteinberg = []KernelTap{
	{DX: 1, DY: 0, Num: 7, Den: 16},
	{DX: -1, DY: 1, Num: 3, Den: 16},
	{DX: 0, DY: 1, Num: 5, Den: 16},
	{DX: 1, DY: 1, Num: 1, Den: 16},
}

// A Diffusion is a weighted error destined for a pixel.
type Diffusion struct {
	X, Y  int
	Error Vector3
}

// A Disperser spreads quantization error to pixels which
// have not been visited yet.
//
// Pixels must be processed in raster order, since each
// pixel reads the error left by the ones before it.
type Disperser struct {
	Kernel []KernelTap
}

// NewDisperser creates a Floyd-Steinberg disperser.
func NewDisperser() *Disperser {
	return &Disperser{Kernel: FloydSteinberg}
}

// Spread computes the error each neighbor of (x, y) should
// receive when original is replaced by chosen.
//
// Each weighted error is truncated toward zero.
// Neighbors are not bounds checked.
func (d *Disperser) Spread(x, y int, original, chosen Color) []Diffusion {
	diff := original.Sub(chosen)
	res := make([]Diffusion, 0, len(d.Kernel))
	for _, tap := range d.Kernel {
		res = append(res, Diffusion{
			X:     x + tap.DX,
			Y:     y + tap.DY,
			Error: diff.Scale(tap.Num, tap.Den),
		})
	}
	return res
}

// Apply adds the error from replacing original with chosen
// at (x, y) to the neighbors in img. Neighbors outside the
// image are dropped.
func (d *Disperser) Apply(img Image, x, y int, original, chosen Color) {
	if original == chosen {
		return
	}
	w, h := img.Width(), img.Height()
	for _, diff := range d.Spread(x, y, original, chosen) {
		if diff.X < 0 || diff.X >= w || diff.Y < 0 || diff.Y >= h || diff.Error.IsZero() {
			continue
		}
		img.Set(diff.X, diff.Y, img.Get(diff.X, diff.Y).AddClamped(diff.Error))
	}
}
