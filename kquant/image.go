package kquant

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/unixpickle/essentials"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a mutable grid of RGB pixels.
type Image interface {
	Width() int
	Height() int
	Get(x, y int) Color
	Set(x, y int, c Color)
}

// A Bitmap is an Image stored as interleaved channels.
//
// Depth is 3 for opaque images and 4 when an alpha channel
// is present. Only the first three channels of a pixel are
// ever read or written; alpha is carried through as-is.
type Bitmap struct {
	W, H  int
	Depth int
	Pix   []uint8
}

// NewBitmap copies an image into a new Bitmap.
func NewBitmap(img image.Image) *Bitmap {
	bounds := img.Bounds()
	b := &Bitmap{W: bounds.Dx(), H: bounds.Dy(), Depth: 3}
	if !isOpaque(img) {
		b.Depth = 4
	}
	b.Pix = make([]uint8, b.W*b.H*b.Depth)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			idx := b.offset(x, y)
			b.Pix[idx] = c.R
			b.Pix[idx+1] = c.G
			b.Pix[idx+2] = c.B
			if b.Depth == 4 {
				b.Pix[idx+3] = c.A
			}
		}
	}
	return b
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

func (b *Bitmap) offset(x, y int) int {
	return (y*b.W + x) * b.Depth
}

func (b *Bitmap) Width() int {
	return b.W
}

func (b *Bitmap) Height() int {
	return b.H
}

func (b *Bitmap) Get(x, y int) Color {
	idx := b.offset(x, y)
	return Color{R: b.Pix[idx], G: b.Pix[idx+1], B: b.Pix[idx+2]}
}

func (b *Bitmap) Set(x, y int, c Color) {
	idx := b.offset(x, y)
	b.Pix[idx] = c.R
	b.Pix[idx+1] = c.G
	b.Pix[idx+2] = c.B
}

// Pixels lists every pixel in raster order.
func (b *Bitmap) Pixels() []Color {
	res := make([]Color, 0, b.W*b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			res = append(res, b.Get(x, y))
		}
	}
	return res
}

// Image converts the bitmap to an *image.NRGBA.
func (b *Bitmap) Image() *image.NRGBA {
	res := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			idx := b.offset(x, y)
			alpha := uint8(0xff)
			if b.Depth == 4 {
				alpha = b.Pix[idx+3]
			}
			res.SetNRGBA(x, y, color.NRGBA{
				R: b.Pix[idx],
				G: b.Pix[idx+1],
				B: b.Pix[idx+2],
				A: alpha,
			})
		}
	}
	return res
}

// ResizeImage shrinks an image so that neither dimension
// exceeds maxSize, keeping its aspect ratio.
//
// Images which already fit, or a non-positive maxSize,
// leave the image unchanged.
func ResizeImage(img image.Image, maxSize int) image.Image {
	size := img.Bounds().Size()
	if maxSize <= 0 || (size.X <= maxSize && size.Y <= maxSize) {
		return img
	}
	return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
}

// ReadImage decodes an image file in any registered format.
func ReadImage(path string) (image.Image, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("read image", err)
	}
	defer r.Close()
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, essentials.AddCtx("decode image", err)
	}
	return img, nil
}

// WriteImage encodes an image as a PNG file.
func WriteImage(path string, img image.Image) error {
	w, err := os.Create(path)
	if err != nil {
		return essentials.AddCtx("write image", err)
	}
	defer w.Close()
	enc := png.Encoder{
		CompressionLevel: png.BestCompression,
	}
	if err := enc.Encode(w, img); err != nil {
		return essentials.AddCtx("encode image", err)
	}
	return nil
}

// PaletteSwatch draws each palette entry as a tileSize
// square, left to right.
func PaletteSwatch(p Palette, tileSize int) *image.NRGBA {
	if tileSize <= 0 {
		tileSize = 64
	}
	res := image.NewNRGBA(image.Rect(0, 0, tileSize*len(p), tileSize))
	for i, c := range p {
		fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		for y := 0; y < tileSize; y++ {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				res.SetNRGBA(x, y, fill)
			}
		}
	}
	return res
}
