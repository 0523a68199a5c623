// Package raster holds the pixel grid every transform and filter works on.
//
// A Raster is a plain value: operations in this module never modify a raster
// they receive, they allocate a new one for their output.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrInvalidInput is returned for shape problems: zero-sized rasters,
// unsupported channel counts, kernels larger than the image, etc.
var ErrInvalidInput = errors.New("invalid input")

// Raster is a Height x Width grid of pixels with Channels samples each
// (1 for grayscale, 3 for RGB). Samples are stored row-major, interleaved:
// Pix[(y*Width+x)*Channels+c].
type Raster struct {
	Width, Height, Channels int
	Pix                     []uint8
}

// New creates a zero-filled raster.
func New(width, height, channels int) (*Raster, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("raster size %dx%d: %w", width, height, ErrInvalidInput)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("raster with %d channels (only 1 or 3 supported): %w", channels, ErrInvalidInput)
	}
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// Uniform creates a raster where every sample has the given value.
func Uniform(width, height, channels int, value uint8) (*Raster, error) {
	r, err := New(width, height, channels)
	if err != nil {
		return nil, err
	}
	for ii := range r.Pix {
		r.Pix[ii] = value
	}
	return r, nil
}

// Validate checks the raster invariants. It's what the engines call on their
// inputs before doing any work.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("nil raster: %w", ErrInvalidInput)
	}
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("raster size %dx%d: %w", r.Width, r.Height, ErrInvalidInput)
	}
	if r.Channels != 1 && r.Channels != 3 {
		return fmt.Errorf("raster with %d channels: %w", r.Channels, ErrInvalidInput)
	}
	if len(r.Pix) != r.Width*r.Height*r.Channels {
		return fmt.Errorf("raster %dx%dx%d has %d samples: %w",
			r.Width, r.Height, r.Channels, len(r.Pix), ErrInvalidInput)
	}
	return nil
}

// Bounds returns the raster rectangle, with origin at (0, 0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// Offset of the first sample of pixel (x, y).
func (r *Raster) Offset(x, y int) int {
	return (y*r.Width + x) * r.Channels
}

// At returns the sample of channel c at (x, y).
func (r *Raster) At(x, y, c int) uint8 {
	return r.Pix[r.Offset(x, y)+c]
}

// Set sets the sample of channel c at (x, y).
func (r *Raster) Set(x, y, c int, v uint8) {
	r.Pix[r.Offset(x, y)+c] = v
}

// AtClamped returns the sample at (x, y), replicating the border pixels for
// coordinates outside the raster.
func (r *Raster) AtClamped(x, y, c int) uint8 {
	return r.At(ClampInt(x, 0, r.Width-1), ClampInt(y, 0, r.Height-1), c)
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	clone := *r
	clone.Pix = make([]uint8, len(r.Pix))
	copy(clone.Pix, r.Pix)
	return &clone
}

// NewLike allocates a zero-filled raster with the same shape as r.
func (r *Raster) NewLike() *Raster {
	return &Raster{
		Width:    r.Width,
		Height:   r.Height,
		Channels: r.Channels,
		Pix:      make([]uint8, len(r.Pix)),
	}
}

// SameShape reports whether both rasters have the same width, height and channels.
func (r *Raster) SameShape(other *Raster) bool {
	return r.Width == other.Width && r.Height == other.Height && r.Channels == other.Channels
}

// Equal reports whether both rasters have the same shape and samples.
func (r *Raster) Equal(other *Raster) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !r.SameShape(other) || len(r.Pix) != len(other.Pix) {
		return false
	}
	for ii, v := range r.Pix {
		if other.Pix[ii] != v {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest absolute difference between corresponding
// samples. Both rasters must have the same shape.
func (r *Raster) MaxAbsDiff(other *Raster) int {
	maxDiff := 0
	for ii, v := range r.Pix {
		d := int(v) - int(other.Pix[ii])
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

func (r *Raster) String() string {
	return fmt.Sprintf("Raster(%dx%dx%d)", r.Width, r.Height, r.Channels)
}

// ClampRound converts an accumulated floating point sample to a pixel value:
// it clamps to [0, 255] and rounds to the nearest integer.
func ClampRound(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// ClampInt clamps v to [min, max].
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Samples converts a color to the sample values of a raster with the given
// number of channels. A nil color is white.
func Samples(c color.Color, channels int) []uint8 {
	if c == nil {
		c = color.White
	}
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	rgb := onWhite(nrgba)
	if channels == 1 {
		return []uint8{grayOf(rgb)}
	}
	return rgb[:]
}

// onWhite composites a non-premultiplied color on a white background.
func onWhite(c color.NRGBA) [3]uint8 {
	if c.A == 0xFF {
		return [3]uint8{c.R, c.G, c.B}
	}
	a := uint32(c.A)
	blend := func(v uint8) uint8 {
		return uint8((uint32(v)*a + 0xFF*(0xFF-a) + 0x7F) / 0xFF)
	}
	return [3]uint8{blend(c.R), blend(c.G), blend(c.B)}
}

func grayOf(rgb [3]uint8) uint8 {
	return color.GrayModel.Convert(color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}).(color.Gray).Y
}

// FromImage converts any image to a raster with the given number of channels.
// Transparent areas are composited on white.
func FromImage(img image.Image, channels int) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", ErrInvalidInput)
	}
	bounds := img.Bounds()
	r, err := New(bounds.Dx(), bounds.Dy(), channels)
	if err != nil {
		return nil, err
	}
	pos := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgb := onWhite(color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
			if channels == 1 {
				r.Pix[pos] = grayOf(rgb)
				pos++
			} else {
				copy(r.Pix[pos:pos+3], rgb[:])
				pos += 3
			}
		}
	}
	return r, nil
}

// Image returns the raster as a standard library image: *image.Gray for one
// channel, *image.RGBA (fully opaque) for three.
func (r *Raster) Image() image.Image {
	if r.Channels == 1 {
		img := image.NewGray(r.Bounds())
		copy(img.Pix, r.Pix)
		return img
	}
	img := image.NewRGBA(r.Bounds())
	const bytesPerPixel = 4 // RGBA.
	for ii, jj := 0, 0; ii < len(r.Pix); ii, jj = ii+3, jj+bytesPerPixel {
		img.Pix[jj] = r.Pix[ii]
		img.Pix[jj+1] = r.Pix[ii+1]
		img.Pix[jj+2] = r.Pix[ii+2]
		img.Pix[jj+3] = 0xFF
	}
	return img
}

// ToChannels converts the raster to the given number of channels, returning
// r itself if no conversion is needed.
func (r *Raster) ToChannels(channels int) (*Raster, error) {
	if channels == r.Channels {
		return r, nil
	}
	return FromImage(r.Image(), channels)
}
