package kquant

import (
	"fmt"
	"image"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// A Method is an algorithm for building a palette.
type Method int

const (
	// MethodKMeans refines a seed palette with k-means.
	MethodKMeans Method = iota

	// MethodOctree uses the reduced octree palette as-is.
	MethodOctree
)

// ParseMethod parses the name of a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "kmeans":
		return MethodKMeans, nil
	case "octree":
		return MethodOctree, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

func (m Method) String() string {
	switch m {
	case MethodOctree:
		return "octree"
	default:
		return "kmeans"
	}
}

// BuildPalette creates a palette of at most c.PaletteSize
// colors for the pixels.
func BuildPalette(pixels []Color, c *Config) (Palette, error) {
	if c == nil {
		c = &Config{}
	}
	if c.PaletteSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPaletteSize, c.PaletteSize)
	}
	if len(pixels) == 0 {
		return nil, ErrEmptyInput
	}
	log := c.logger()
	switch c.Method {
	case MethodOctree:
		p := OctreePalette(pixels, c.PaletteSize)
		log.Debug("built octree palette", zap.Int("colors", len(p)))
		return p, nil
	default:
		r := &Refiner{MaxIters: c.MaxIters, Seed: c.Seed, Logger: log}
		res, err := r.Refine(pixels, nil, c.PaletteSize)
		if err != nil {
			return nil, err
		}
		log.Debug("built kmeans palette",
			zap.Int("colors", len(res.Palette)),
			zap.Int("iterations", res.Iterations),
			zap.Bool("converged", res.Converged))
		return res.Palette, nil
	}
}

// Remap replaces every pixel of img with its nearest
// palette entry, visiting pixels in raster order.
//
// If d is non-nil, the quantization error of each pixel is
// diffused into the pixels after it.
//
// The result holds the palette index of every pixel in
// raster order.
func Remap(img Image, p Palette, d *Disperser) []int {
	tree := NewKDTree(p)
	w, h := img.Width(), img.Height()
	indices := make([]int, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			original := img.Get(x, y)
			idx := tree.Nearest(original)
			chosen := p[idx]
			if d != nil {
				d.Apply(img, x, y, original, chosen)
			}
			img.Set(x, y, chosen)
			indices = append(indices, idx)
		}
	}
	return indices
}

// QuantizeImage reduces an image to a palette of at most
// c.PaletteSize colors.
//
// Opaque images with at most 256 colors produce an
// *image.Paletted; other images produce an *image.NRGBA
// with their alpha channel preserved.
func QuantizeImage(img image.Image, c *Config) (image.Image, Palette, error) {
	if c == nil {
		c = &Config{}
	}
	log := c.logger()
	img = ResizeImage(img, c.MaxSize)
	bitmap := NewBitmap(img)
	log.Debug("quantizing image",
		zap.String("pixels", humanize.Comma(int64(bitmap.W*bitmap.H))),
		zap.Stringer("method", c.Method),
		zap.Int("colors", c.PaletteSize))

	palette, err := BuildPalette(bitmap.Pixels(), c)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("palette", zap.Strings("colors", palette.Hex()))

	var disperser *Disperser
	if c.Dithering {
		disperser = NewDisperser()
	}
	indices := Remap(bitmap, palette, disperser)

	if bitmap.Depth == 3 && len(palette) <= 256 {
		res := image.NewPaletted(image.Rect(0, 0, bitmap.W, bitmap.H), palette.Colors())
		for i, idx := range indices {
			res.Pix[i] = uint8(idx)
		}
		return res, palette, nil
	}
	return bitmap.Image(), palette, nil
}
