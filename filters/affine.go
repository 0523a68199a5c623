package filters

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/raster"
)

// ErrSingularTransform is returned when an affine matrix can't be inverted,
// e.g. a zero scale on one of the axes.
var ErrSingularTransform = errors.New("singular transform")

// SingularThreshold is the smallest absolute determinant accepted for an
// affine matrix.
const SingularThreshold = 1e-9

// Matrices are mgl64.Mat3 in homogeneous coordinates, applied to column
// vectors (x, y, 1). Remember mgl64 matrices are stored column-major.

// Translation returns the matrix that moves points by (tx, ty).
func Translation(tx, ty float64) mgl64.Mat3 {
	return mgl64.Translate2D(tx, ty)
}

// Rotation returns the rotation around the origin by the given angle in
// degrees, counter-clockwise positive in the usual math convention (with the
// y axis pointing up).
func Rotation(degrees float64) mgl64.Mat3 {
	return mgl64.HomogRotate2D(mgl64.DegToRad(degrees))
}

// Scaling returns the matrix that scales x by sx and y by sy.
func Scaling(sx, sy float64) mgl64.Mat3 {
	return mgl64.Scale2D(sx, sy)
}

// Shearing returns the matrix for x' = x + shx*y, y' = y + shy*x.
func Shearing(shx, shy float64) mgl64.Mat3 {
	return mgl64.Mat3{
		1, shy, 0,
		shx, 1, 0,
		0, 0, 1,
	}
}

// Reflection returns the matrix that mirrors points across the axes through
// the origin. Flip is the exact, interpolation free, version for rasters.
func Reflection(axis Axis) mgl64.Mat3 {
	switch axis {
	case Horizontal:
		return mgl64.Scale2D(-1, 1)
	case Vertical:
		return mgl64.Scale2D(1, -1)
	case Both:
		return mgl64.Scale2D(-1, -1)
	}
	return mgl64.Ident3()
}

// Compose returns the matrix that applies ops in the order given: the first
// op is applied first. That is M_last · ... · M_first. No ops yields the identity.
func Compose(ops ...mgl64.Mat3) mgl64.Mat3 {
	m := mgl64.Ident3()
	for _, op := range ops {
		m = op.Mul3(m)
	}
	return m
}

// Centered makes op pivot around (cx, cy) instead of the origin:
// T(cx, cy) · op · T(-cx, -cy).
func Centered(op mgl64.Mat3, cx, cy float64) mgl64.Mat3 {
	return Compose(Translation(-cx, -cy), op, Translation(cx, cy))
}

// IsAffine reports whether the bottom row of m is [0 0 1].
func IsAffine(m mgl64.Mat3) bool {
	return m.At(2, 0) == 0 && m.At(2, 1) == 0 && m.At(2, 2) == 1
}

// Invert returns the inverse of an affine matrix, or ErrSingularTransform.
func Invert(m mgl64.Mat3) (mgl64.Mat3, error) {
	if !IsAffine(m) {
		return mgl64.Mat3{}, fmt.Errorf("matrix bottom row is %v, want [0 0 1]: %w", m.Row(2), raster.ErrInvalidInput)
	}
	det := m.Det()
	if math.IsNaN(det) || math.Abs(det) < SingularThreshold {
		return mgl64.Mat3{}, fmt.Errorf("determinant %g: %w", det, ErrSingularTransform)
	}
	return m.Inv(), nil
}

// Apply resamples r through the forward (input to output coordinates) affine
// matrix m, using bicubic interpolation. See ApplyInterp.
func Apply(r *raster.Raster, m mgl64.Mat3, fill color.Color) (*raster.Raster, error) {
	return ApplyInterp(r, m, fill, Bicubic)
}

// ApplyInterp resamples r through the forward affine matrix m. The output has
// the same size as the input: for every output pixel the inverse of m gives
// the position to sample in the input. Positions outside of the input pixels
// footprint, [-0.5, W-0.5) x [-0.5, H-0.5), get the fill color.
//
// Pixel (x, y) is at the integer coordinates (x, y), with y pointing down.
func ApplyInterp(r *raster.Raster, m mgl64.Mat3, fill color.Color, interp Interpolation) (*raster.Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	inv, err := Invert(m)
	if err != nil {
		return nil, err
	}
	sample, err := interp.sampler()
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("ApplyInterp(%s, interp=%s): inverse=%v", r, interp, inv)

	fillSamples := raster.Samples(fill, r.Channels)
	out := r.NewLike()
	a, b, c := inv.At(0, 0), inv.At(0, 1), inv.At(0, 2)
	d, e, f := inv.At(1, 0), inv.At(1, 1), inv.At(1, 2)
	maxX, maxY := float64(r.Width)-0.5, float64(r.Height)-0.5
	values := make([]float64, r.Channels)
	for yo := 0; yo < r.Height; yo++ {
		fy := float64(yo)
		for xo := 0; xo < r.Width; xo++ {
			fx := float64(xo)
			xi := a*fx + b*fy + c
			yi := d*fx + e*fy + f
			pos := out.Offset(xo, yo)
			if !(xi >= -0.5 && xi < maxX && yi >= -0.5 && yi < maxY) {
				copy(out.Pix[pos:pos+r.Channels], fillSamples)
				continue
			}
			sample(r, xi, yi, values)
			for ch, v := range values {
				out.Pix[pos+ch] = raster.ClampRound(v)
			}
		}
	}
	return out, nil
}

// Axis of a flip.
type Axis int

const (
	// Horizontal mirrors left and right.
	Horizontal Axis = iota
	// Vertical mirrors top and bottom.
	Vertical
	// Both mirrors on both axes, the same as a 180 degrees rotation.
	Both
)

var axisNames = []string{"horizontal", "vertical", "both"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis parses "horizontal", "vertical" or "both" (also "h", "v", "hv").
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	case "both", "hv", "vh":
		return Both, nil
	}
	return 0, fmt.Errorf("unknown flip axis %q: %w", s, raster.ErrInvalidInput)
}

// Flip mirrors the raster about its own center. It only rearranges pixels,
// so it's exact.
func Flip(r *raster.Raster, axis Axis) (*raster.Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if axis < Horizontal || axis > Both {
		return nil, fmt.Errorf("flip axis %d: %w", int(axis), raster.ErrInvalidInput)
	}
	flipX := axis == Horizontal || axis == Both
	flipY := axis == Vertical || axis == Both
	out := r.NewLike()
	channels := r.Channels
	for y := 0; y < r.Height; y++ {
		sy := y
		if flipY {
			sy = r.Height - 1 - y
		}
		for x := 0; x < r.Width; x++ {
			sx := x
			if flipX {
				sx = r.Width - 1 - x
			}
			dst, src := out.Offset(x, y), r.Offset(sx, sy)
			copy(out.Pix[dst:dst+channels], r.Pix[src:src+channels])
		}
	}
	return out, nil
}
