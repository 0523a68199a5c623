package filters

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/janpfeifer/imagelab/raster"
)

// Params of the standard transform pipeline: scale, then rotate, then shear,
// each around the image center, and finally translate.
type Params struct {
	ScaleX, ScaleY         float64
	RotateDegrees          float64
	ShearX, ShearY         float64
	TranslateX, TranslateY float64
}

// Identity returns the parameters of the transform that changes nothing.
func Identity() Params {
	return Params{ScaleX: 1, ScaleY: 1}
}

// IsIdentity reports whether p is the identity transform.
func (p Params) IsIdentity() bool {
	return p == Identity()
}

// Validate rejects non-finite parameters and zero scales.
func (p Params) Validate() error {
	for _, v := range []float64{p.ScaleX, p.ScaleY, p.RotateDegrees, p.ShearX, p.ShearY, p.TranslateX, p.TranslateY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("transform parameters %+v: %w", p, raster.ErrInvalidInput)
		}
	}
	if math.Abs(p.ScaleX) < SingularThreshold || math.Abs(p.ScaleY) < SingularThreshold {
		return fmt.Errorf("scale (%g, %g): %w", p.ScaleX, p.ScaleY, ErrSingularTransform)
	}
	return nil
}

// Center returns the center of a width x height image, in pixel coordinates.
func Center(width, height int) (cx, cy float64) {
	return float64(width-1) / 2, float64(height-1) / 2
}

// Matrix composes the forward matrix of the pipeline for an image of the
// given size.
//
// Pixel coordinates have y pointing down, so the angle is negated for
// RotateDegrees to turn the image counter-clockwise on screen.
func (p Params) Matrix(width, height int) mgl64.Mat3 {
	cx, cy := Center(width, height)
	return Compose(
		Centered(Scaling(p.ScaleX, p.ScaleY), cx, cy),
		Centered(Rotation(-p.RotateDegrees), cx, cy),
		Centered(Shearing(p.ShearX, p.ShearY), cx, cy),
		Translation(p.TranslateX, p.TranslateY),
	)
}

func (p Params) String() string {
	return fmt.Sprintf("scale=(%g, %g) rotate=%g° shear=(%g, %g) translate=(%g, %g)",
		p.ScaleX, p.ScaleY, p.RotateDegrees, p.ShearX, p.ShearY, p.TranslateX, p.TranslateY)
}
