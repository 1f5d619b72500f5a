package kquant

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBitmap(w, h int, c Color) *Bitmap {
	b := &Bitmap{W: w, H: h, Depth: 3, Pix: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, c)
		}
	}
	return b
}

func TestDisperserSpread(t *testing.T) {
	d := NewDisperser()
	diffs := d.Spread(3, 4, Color{R: 116, G: 100, B: 0}, Color{R: 100, G: 116, B: 0})
	require.Len(t, diffs, 4)
	assert.Equal(t, []Diffusion{
		{X: 4, Y: 4, Error: Vector3{X: 7, Y: -7}},
		{X: 2, Y: 5, Error: Vector3{X: 3, Y: -3}},
		{X: 3, Y: 5, Error: Vector3{X: 5, Y: -5}},
		{X: 4, Y: 5, Error: Vector3{X: 1, Y: -1}},
	}, diffs)
}

func TestDisperserNoError(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	d := NewDisperser()
	for i := 0; i < 100; i++ {
		c := randomColor(r)
		for _, diff := range d.Spread(1, 1, c, c) {
			assert.True(t, diff.Error.IsZero())
		}
	}

	img := NewBitmap(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	before := append([]uint8{}, img.Pix...)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := img.Get(x, y)
			d.Apply(img, x, y, c, c)
		}
	}
	assert.Equal(t, before, img.Pix)
}

func TestDisperserApplyClamps(t *testing.T) {
	img := newTestBitmap(3, 2, Color{R: 250, G: 5, B: 128})
	d := NewDisperser()
	d.Apply(img, 1, 0, Color{R: 255, G: 0, B: 128}, Color{R: 0, G: 255, B: 128})

	// The error is (255, -255, 0).
	assert.Equal(t, Color{R: 255, G: 0, B: 128}, img.Get(2, 0))
	assert.Equal(t, Color{R: 255, G: 0, B: 128}, img.Get(0, 1))
	assert.Equal(t, Color{R: 255, G: 0, B: 128}, img.Get(1, 1))
	assert.Equal(t, Color{R: 255, G: 0, B: 128}, img.Get(2, 1))
	assert.Equal(t, Color{R: 250, G: 5, B: 128}, img.Get(0, 0))
}

func TestDisperserDropsOutOfBounds(t *testing.T) {
	img := newTestBitmap(2, 2, Color{R: 100, G: 100, B: 100})
	d := NewDisperser()
	orig := Color{R: 132, G: 100, B: 100}
	chosen := Color{R: 100, G: 100, B: 100}

	// Left edge: the (-1, +1) neighbor is dropped.
	d.Apply(img, 0, 0, orig, chosen)
	assert.Equal(t, Color{R: 114, G: 100, B: 100}, img.Get(1, 0))
	assert.Equal(t, Color{R: 110, G: 100, B: 100}, img.Get(0, 1))
	assert.Equal(t, Color{R: 102, G: 100, B: 100}, img.Get(1, 1))

	// Bottom-right corner: everything is dropped.
	before := append([]uint8{}, img.Pix...)
	d.Apply(img, 1, 1, orig, chosen)
	assert.Equal(t, before, img.Pix)

	// Right edge: only (-1, +1) and (0, +1) remain.
	d.Apply(img, 1, 0, orig, chosen)
	assert.Equal(t, Color{R: 116, G: 100, B: 100}, img.Get(0, 1))
	assert.Equal(t, Color{R: 112, G: 100, B: 100}, img.Get(1, 1))
}
