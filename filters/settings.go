package filters

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/janpfeifer/imagelab/kernels"
	"github.com/janpfeifer/imagelab/raster"
)

// Special values of Settings.Filter, besides the kernel preset names.
const (
	NoFilter     = "none"
	CustomFilter = "custom"
)

// FallbackKernel is used when the custom kernel typed by the user is malformed.
const FallbackKernel = kernels.Sharpen

// Settings holds everything the user interface (or the command line) collects
// to edit an image. It's a plain value: each edit builds its own filters from it.
type Settings struct {
	Params Params

	// Flip, if set, is applied before the affine transform.
	Flip     bool
	FlipAxis Axis

	// Filter is NoFilter, CustomFilter or one of kernels.PresetNames().
	Filter string
	// CustomKernel is the text of the kernel used when Filter is CustomFilter,
	// in the format accepted by kernels.ParseCustom.
	CustomKernel string
	Normalize    bool

	// Fill is the background color of areas not covered by the transformed
	// image. Nil is white.
	Fill          color.Color
	Interpolation Interpolation
}

// DefaultSettings changes nothing in the image.
func DefaultSettings() Settings {
	return Settings{
		Params:        Identity(),
		Filter:        NoFilter,
		CustomKernel:  "0,-1,0; -1,5,-1; 0,-1,0",
		Normalize:     true,
		Fill:          color.White,
		Interpolation: Bicubic,
	}
}

// FilterOptions lists the valid values of Settings.Filter, in display order.
func FilterOptions() []string {
	options := []string{NoFilter}
	options = append(options, kernels.PresetNames()...)
	return append(options, CustomFilter)
}

// FallbackError is returned together with a usable result when the custom
// kernel couldn't be parsed, and FallbackKernel was used instead. The caller
// should show the result and surface the error.
type FallbackError struct {
	Err error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("%v (using %s instead)", e.Err, FallbackKernel)
}

func (e *FallbackError) Unwrap() error { return e.Err }

// Choice returns the kernel selection. It fails with ErrMalformedKernel for a
// custom kernel that doesn't parse.
func (s Settings) Choice() (kernels.FilterChoice, error) {
	if s.Filter == CustomFilter {
		k, err := kernels.ParseCustom(s.CustomKernel)
		if err != nil {
			return kernels.FilterChoice{}, err
		}
		return kernels.CustomChoice(k), nil
	}
	return kernels.PresetChoice(s.Filter), nil
}

// ResolveKernel returns the kernel selected, or nil if Filter is NoFilter.
//
// If the custom kernel is malformed, it returns FallbackKernel together with
// a *FallbackError. Any other error (an unknown preset) comes with a nil
// kernel.
func (s Settings) ResolveKernel() (*kernels.Kernel, error) {
	if s.Filter == NoFilter || s.Filter == "" {
		return nil, nil
	}
	choice, err := s.Choice()
	if err != nil {
		if !errors.Is(err, kernels.ErrMalformedKernel) {
			return nil, err
		}
		fallback, fallbackErr := kernels.Preset(FallbackKernel)
		if fallbackErr != nil {
			return nil, fallbackErr
		}
		return fallback, &FallbackError{Err: err}
	}
	return choice.Kernel()
}

// Filters builds the chain of filters for the settings, in the order flip,
// affine transform, convolution. Steps that change nothing are skipped.
//
// It may return usable filters together with a *FallbackError, see ResolveKernel.
func (s Settings) Filters() ([]Filter, error) {
	var filterList []Filter
	if s.Flip {
		filterList = append(filterList, &FlipFilter{Axis: s.FlipAxis})
	}
	if !s.Params.IsIdentity() {
		if err := s.Params.Validate(); err != nil {
			return nil, err
		}
		filterList = append(filterList, &AffineFilter{
			Params:        s.Params,
			Fill:          s.Fill,
			Interpolation: s.Interpolation,
		})
	}
	k, err := s.ResolveKernel()
	var fallback *FallbackError
	if err != nil && !errors.As(err, &fallback) {
		return nil, err
	}
	if k != nil {
		filterList = append(filterList, &ConvolutionFilter{Kernel: k, Normalize: s.Normalize})
	}
	if fallback != nil {
		return filterList, fallback
	}
	return filterList, nil
}

// Apply builds the filters and applies them to r.
//
// If the custom kernel was malformed the result with FallbackKernel is
// returned along with the *FallbackError. For any other error the result is nil.
func (s Settings) Apply(r *raster.Raster) (*raster.Raster, error) {
	filterList, err := s.Filters()
	var fallback *FallbackError
	if err != nil && !errors.As(err, &fallback) {
		return nil, err
	}
	out, err := ApplyAll(r, filterList...)
	if err != nil {
		return nil, err
	}
	if fallback != nil {
		return out, fallback
	}
	return out, nil
}

// Flags returns the command-line flags that reproduce the settings in batch
// mode, one "-name=value" per element, unquoted. Values equal to the
// defaults are omitted.
func (s Settings) Flags() []string {
	var flags []string
	add := func(name string, value interface{}) {
		flags = append(flags, fmt.Sprintf("-%s=%v", name, value))
	}
	p := s.Params
	if p.ScaleX != 1 {
		add("scale_x", p.ScaleX)
	}
	if p.ScaleY != 1 {
		add("scale_y", p.ScaleY)
	}
	if p.RotateDegrees != 0 {
		add("rotate", p.RotateDegrees)
	}
	if p.ShearX != 0 {
		add("shear_x", p.ShearX)
	}
	if p.ShearY != 0 {
		add("shear_y", p.ShearY)
	}
	if p.TranslateX != 0 {
		add("translate_x", p.TranslateX)
	}
	if p.TranslateY != 0 {
		add("translate_y", p.TranslateY)
	}
	if s.Flip {
		add("flip", s.FlipAxis)
	}
	if s.Interpolation != Bicubic {
		add("interp", s.Interpolation)
	}
	if s.Fill != nil {
		fill := raster.Samples(s.Fill, 3)
		if fill[0] != 0xFF || fill[1] != 0xFF || fill[2] != 0xFF {
			add("fill", fmt.Sprintf("%02x%02x%02x", fill[0], fill[1], fill[2]))
		}
	}
	if s.Filter != "" && s.Filter != NoFilter {
		add("filter", s.Filter)
		if s.Filter == CustomFilter {
			add("kernel", s.CustomKernel)
		}
	}
	if !s.Normalize {
		add("normalize", false)
	}
	return flags
}
