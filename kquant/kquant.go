// Package kquant reduces images to small color palettes
// using octrees and k-means clustering.
package kquant

import "go.uber.org/zap"

// Config controls how an image is quantized.
type Config struct {
	// PaletteSize is the maximum number of colors.
	PaletteSize int

	Method Method

	// Seed picks the initial palette for MethodKMeans.
	Seed Seed

	// Dithering enables Floyd-Steinberg error diffusion.
	Dithering bool

	// MaxIters limits k-means iterations.
	// See Refiner.MaxIters.
	MaxIters int

	// MaxSize, if positive, shrinks larger images before
	// quantizing them.
	MaxSize int

	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// QuantizeFile reads an image from inPath and saves the
// quantized version to outPath as a PNG.
func QuantizeFile(inPath, outPath string, c *Config) (Palette, error) {
	if c == nil {
		c = &Config{}
	}
	img, err := ReadImage(inPath)
	if err != nil {
		return nil, err
	}
	out, palette, err := QuantizeImage(img, c)
	if err != nil {
		return nil, err
	}
	if err := WriteImage(outPath, out); err != nil {
		return nil, err
	}
	return palette, nil
}
