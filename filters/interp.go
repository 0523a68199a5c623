package filters

import (
	"fmt"
	"math"
	"strings"

	"github.com/janpfeifer/imagelab/raster"
)

// Interpolation selects how an affine transform samples the input image.
type Interpolation int

const (
	// Bicubic uses the Catmull-Rom spline over 4x4 neighbours. Default.
	Bicubic Interpolation = iota
	// Bilinear uses the 2x2 neighbours. Softer, but never overshoots.
	Bilinear
	// Nearest takes the closest pixel.
	Nearest
)

var interpolationNames = []string{"bicubic", "bilinear", "nearest"}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// InterpolationNames lists the names accepted by ParseInterpolation.
func InterpolationNames() []string {
	return append([]string(nil), interpolationNames...)
}

// ParseInterpolation converts a name to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for ii, name := range interpolationNames {
		if s == name {
			return Interpolation(ii), nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q: %w", s, raster.ErrInvalidInput)
}

// samplerFn writes into values the interpolated samples of every channel at
// the (fractional) position (x, y). Neighbours outside the raster are edge
// replicated.
type samplerFn func(r *raster.Raster, x, y float64, values []float64)

func (i Interpolation) sampler() (samplerFn, error) {
	switch i {
	case Bicubic:
		return sampleBicubic, nil
	case Bilinear:
		return sampleBilinear, nil
	case Nearest:
		return sampleNearest, nil
	}
	return nil, fmt.Errorf("interpolation %d: %w", int(i), raster.ErrInvalidInput)
}

func sampleNearest(r *raster.Raster, x, y float64, values []float64) {
	xi := raster.ClampInt(int(math.Floor(x+0.5)), 0, r.Width-1)
	yi := raster.ClampInt(int(math.Floor(y+0.5)), 0, r.Height-1)
	pos := r.Offset(xi, yi)
	for c := range values {
		values[c] = float64(r.Pix[pos+c])
	}
}

func sampleBilinear(r *raster.Raster, x, y float64, values []float64) {
	x0f, y0f := math.Floor(x), math.Floor(y)
	tx, ty := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)
	for c := range values {
		v00 := float64(r.AtClamped(x0, y0, c))
		v10 := float64(r.AtClamped(x0+1, y0, c))
		v01 := float64(r.AtClamped(x0, y0+1, c))
		v11 := float64(r.AtClamped(x0+1, y0+1, c))
		top := v00 + (v10-v00)*tx
		bottom := v01 + (v11-v01)*tx
		values[c] = top + (bottom-top)*ty
	}
}

// catmullRom returns the weights of the 4 neighbours at offsets -1, 0, 1, 2
// for a position t in [0, 1) past the neighbour at offset 0. For t == 0 the
// weights are exactly (0, 1, 0, 0).
func catmullRom(t float64) [4]float64 {
	t2 := t * t
	t3 := t2 * t
	return [4]float64{
		-0.5*t3 + t2 - 0.5*t,
		1.5*t3 - 2.5*t2 + 1,
		-1.5*t3 + 2*t2 + 0.5*t,
		0.5*t3 - 0.5*t2,
	}
}

func sampleBicubic(r *raster.Raster, x, y float64, values []float64) {
	x0f, y0f := math.Floor(x), math.Floor(y)
	wx, wy := catmullRom(x-x0f), catmullRom(y-y0f)
	x0, y0 := int(x0f), int(y0f)
	var xs, ys [4]int
	for ii := range xs {
		xs[ii] = raster.ClampInt(x0+ii-1, 0, r.Width-1)
		ys[ii] = raster.ClampInt(y0+ii-1, 0, r.Height-1)
	}
	for c := range values {
		var acc float64
		for jj, sy := range ys {
			if wy[jj] == 0 {
				continue
			}
			var rowAcc float64
			for ii, sx := range xs {
				if wx[ii] == 0 {
					continue
				}
				rowAcc += wx[ii] * float64(r.Pix[r.Offset(sx, sy)+c])
			}
			acc += wy[jj] * rowAcc
		}
		values[c] = acc
	}
}
