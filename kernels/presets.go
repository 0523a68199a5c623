package kernels

import "fmt"

// Names of the preset kernels.
const (
	Identity  = "identity"
	BoxBlur3  = "box_blur_3"
	Gaussian5 = "gaussian_5"
	Sharpen   = "sharpen"
	SobelX    = "sobel_x"
	SobelY    = "sobel_y"
	Laplacian = "laplacian"
)

var presetNames = []string{Identity, BoxBlur3, Gaussian5, Sharpen, SobelX, SobelY, Laplacian}

// PresetNames returns the names accepted by Preset, in display order.
func PresetNames() []string {
	return append([]string(nil), presetNames...)
}

// Preset returns a new copy of the named kernel.
func Preset(name string) (*Kernel, error) {
	switch name {
	case Identity:
		return mustNew([][]float64{
			{0, 0, 0},
			{0, 1, 0},
			{0, 0, 0},
		}), nil
	case BoxBlur3:
		return mustNew([][]float64{
			{1, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		}), nil
	case Gaussian5:
		return binomial(1, 4, 6, 4, 1), nil
	case Sharpen:
		return mustNew([][]float64{
			{0, -1, 0},
			{-1, 5, -1},
			{0, -1, 0},
		}), nil
	case SobelX:
		return mustNew([][]float64{
			{-1, 0, 1},
			{-2, 0, 2},
			{-1, 0, 1},
		}), nil
	case SobelY:
		return mustNew([][]float64{
			{-1, -2, -1},
			{0, 0, 0},
			{1, 2, 1},
		}), nil
	case Laplacian:
		return mustNew([][]float64{
			{0, 1, 0},
			{1, -4, 1},
			{0, 1, 0},
		}), nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
}

// binomial returns the outer product of coefficients with itself.
func binomial(coefficients ...float64) *Kernel {
	rows := make([][]float64, len(coefficients))
	for ii, a := range coefficients {
		rows[ii] = make([]float64, len(coefficients))
		for jj, b := range coefficients {
			rows[ii][jj] = a * b
		}
	}
	return mustNew(rows)
}

// FilterChoice selects a kernel: either one of the presets or a custom
// kernel. The zero value is not a valid choice.
type FilterChoice struct {
	preset string
	custom *Kernel
}

// PresetChoice selects the named preset.
func PresetChoice(name string) FilterChoice {
	return FilterChoice{preset: name}
}

// CustomChoice selects a user supplied kernel.
func CustomChoice(k *Kernel) FilterChoice {
	return FilterChoice{custom: k}
}

// IsCustom reports whether the choice holds a custom kernel.
func (fc FilterChoice) IsCustom() bool {
	return fc.custom != nil
}

// Kernel resolves the choice to a kernel.
func (fc FilterChoice) Kernel() (*Kernel, error) {
	if fc.custom != nil {
		return fc.custom.Clone(), nil
	}
	return Preset(fc.preset)
}

func (fc FilterChoice) String() string {
	if fc.custom != nil {
		return fmt.Sprintf("custom(%s)", fc.custom)
	}
	return fc.preset
}
