// Package filters implements the image transforms: affine transforms
// (translate, rotate, scale, shear), flips and 2D convolution.
//
// All functions are pure: they never modify the input raster, and return a
// newly allocated one. They are safe for concurrent use.
package filters

import (
	"fmt"
	"image/color"

	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/kernels"
	"github.com/janpfeifer/imagelab/raster"
)

// Filter is one edition to the image. Filters are applied in sequence, each
// one to the output of the previous.
type Filter interface {
	// Apply returns a new raster with the filter applied. It must not modify r.
	Apply(r *raster.Raster) (*raster.Raster, error)

	// Name used in logs and status messages.
	Name() string
}

// ApplyAll applies the filters in order. On error nothing is returned, and
// the input is untouched.
func ApplyAll(r *raster.Raster, filters ...Filter) (*raster.Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	glog.V(2).Infof("ApplyAll: %d filters", len(filters))
	current := r
	for _, filter := range filters {
		next, err := filter.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filter.Name(), err)
		}
		current = next
	}
	if current == r {
		current = r.Clone()
	}
	return current, nil
}

// FlipFilter mirrors the image, see Flip.
type FlipFilter struct {
	Axis Axis
}

// Apply implements Filter.
func (f *FlipFilter) Apply(r *raster.Raster) (*raster.Raster, error) { return Flip(r, f.Axis) }

// Name implements Filter.
func (f *FlipFilter) Name() string { return fmt.Sprintf("flip(%s)", f.Axis) }

// AffineFilter applies the standard transform pipeline described by Params.
type AffineFilter struct {
	Params        Params
	Fill          color.Color
	Interpolation Interpolation
}

// Apply implements Filter.
func (f *AffineFilter) Apply(r *raster.Raster) (*raster.Raster, error) {
	if err := f.Params.Validate(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return ApplyInterp(r, f.Params.Matrix(r.Width, r.Height), f.Fill, f.Interpolation)
}

// Name implements Filter.
func (f *AffineFilter) Name() string { return fmt.Sprintf("affine(%s)", f.Params) }

// ConvolutionFilter convolves the image with Kernel, see Convolve.
type ConvolutionFilter struct {
	Kernel    *kernels.Kernel
	Normalize bool
}

// Apply implements Filter.
func (f *ConvolutionFilter) Apply(r *raster.Raster) (*raster.Raster, error) {
	return Convolve(r, f.Kernel, f.Normalize)
}

// Name implements Filter.
func (f *ConvolutionFilter) Name() string {
	if f.Kernel == nil {
		return "convolution(nil)"
	}
	return fmt.Sprintf("convolution(%dx%d, normalize=%v)", f.Kernel.Height, f.Kernel.Width, f.Normalize)
}
