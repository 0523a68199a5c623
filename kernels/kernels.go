// Package kernels implements the library of convolution kernels: the named
// presets, parsing of user typed kernels and the FilterChoice variant the UI
// uses to pick one of them.
package kernels

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMalformedKernel is returned when a user supplied kernel can't be used:
	// bad numbers, ragged rows, empty grid or an even dimension.
	ErrMalformedKernel = errors.New("malformed kernel")

	// ErrUnknownPreset is returned for a preset name not in the library. The set
	// of presets is closed, so this is always a bug in the caller.
	ErrUnknownPreset = errors.New("unknown kernel preset")
)

// NormalizeEpsilon is the smallest absolute kernel sum for which
// normalization is applied. Kernels summing to ~0 (edge detectors) are left
// untouched.
const NormalizeEpsilon = 1e-6

// Kernel is a rectangular grid of weights with odd dimensions, so there is
// always a well defined center. Weights are stored row-major.
type Kernel struct {
	Width, Height int
	Weights       []float64
}

// New creates a kernel from its rows.
func New(rows [][]float64) (*Kernel, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty kernel: %w", ErrMalformedKernel)
	}
	k := &Kernel{Width: len(rows[0]), Height: len(rows)}
	k.Weights = make([]float64, 0, k.Width*k.Height)
	for ii, row := range rows {
		if len(row) != k.Width {
			return nil, fmt.Errorf("row %d has %d values, row 0 has %d: %w",
				ii, len(row), k.Width, ErrMalformedKernel)
		}
		for jj, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("value at row %d, column %d is %g: %w", ii, jj, v, ErrMalformedKernel)
			}
		}
		k.Weights = append(k.Weights, row...)
	}
	if k.Width%2 == 0 || k.Height%2 == 0 {
		return nil, fmt.Errorf("kernel is %dx%d, both dimensions must be odd: %w",
			k.Height, k.Width, ErrMalformedKernel)
	}
	return k, nil
}

// mustNew is used for the presets, which are known to be valid.
func mustNew(rows [][]float64) *Kernel {
	k, err := New(rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Validate checks the kernel invariants, for kernels not built with New.
func (k *Kernel) Validate() error {
	if k == nil || k.Width < 1 || k.Height < 1 {
		return fmt.Errorf("empty kernel: %w", ErrMalformedKernel)
	}
	if len(k.Weights) != k.Width*k.Height {
		return fmt.Errorf("kernel %dx%d has %d weights: %w", k.Height, k.Width, len(k.Weights), ErrMalformedKernel)
	}
	if k.Width%2 == 0 || k.Height%2 == 0 {
		return fmt.Errorf("kernel is %dx%d, both dimensions must be odd: %w",
			k.Height, k.Width, ErrMalformedKernel)
	}
	for ii, v := range k.Weights {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at row %d, column %d is %g: %w", ii/k.Width, ii%k.Width, v, ErrMalformedKernel)
		}
	}
	return nil
}

// At returns the weight at the given row and column.
func (k *Kernel) At(row, col int) float64 {
	return k.Weights[row*k.Width+col]
}

// Center returns the offsets (rows, columns) of the kernel center.
func (k *Kernel) Center() (int, int) {
	return k.Height / 2, k.Width / 2
}

// Rows returns the weights as a slice of rows.
func (k *Kernel) Rows() [][]float64 {
	rows := make([][]float64, k.Height)
	for ii := range rows {
		rows[ii] = append([]float64(nil), k.Weights[ii*k.Width:(ii+1)*k.Width]...)
	}
	return rows
}

// Sum of all weights.
func (k *Kernel) Sum() float64 {
	var sum float64
	for _, w := range k.Weights {
		sum += w
	}
	return sum
}

// Clone returns a deep copy.
func (k *Kernel) Clone() *Kernel {
	return &Kernel{
		Width:   k.Width,
		Height:  k.Height,
		Weights: append([]float64(nil), k.Weights...),
	}
}

// Normalized returns a copy of the kernel whose weights sum to 1. If the sum
// is (close to) zero, the copy is returned unchanged.
func (k *Kernel) Normalized() *Kernel {
	n := k.Clone()
	sum := k.Sum()
	if math.Abs(sum) <= NormalizeEpsilon {
		return n
	}
	for ii := range n.Weights {
		n.Weights[ii] /= sum
	}
	return n
}

// Separate factors the kernel as the outer product col ⊗ row, if it has rank
// one. Convolving with col vertically and then with row horizontally is then
// equivalent to convolving with the kernel.
func (k *Kernel) Separate() (col, row []float64, ok bool) {
	pivot, pivotAbs := -1, 0.0
	for ii, w := range k.Weights {
		if a := math.Abs(w); a > pivotAbs {
			pivot, pivotAbs = ii, a
		}
	}
	if pivot < 0 {
		return nil, nil, false
	}
	pr, pc := pivot/k.Width, pivot%k.Width
	pv := k.Weights[pivot]
	col = make([]float64, k.Height)
	row = make([]float64, k.Width)
	for ii := 0; ii < k.Height; ii++ {
		col[ii] = k.At(ii, pc)
	}
	for jj := 0; jj < k.Width; jj++ {
		row[jj] = k.At(pr, jj) / pv
	}
	tolerance := 1e-9 * pivotAbs
	for ii := 0; ii < k.Height; ii++ {
		for jj := 0; jj < k.Width; jj++ {
			if math.Abs(col[ii]*row[jj]-k.At(ii, jj)) > tolerance {
				return nil, nil, false
			}
		}
	}
	return col, row, true
}

// String formats the kernel in the same format accepted by ParseCustom.
func (k *Kernel) String() string {
	var sb strings.Builder
	for ii := 0; ii < k.Height; ii++ {
		if ii > 0 {
			sb.WriteString("; ")
		}
		for jj := 0; jj < k.Width; jj++ {
			if jj > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(k.At(ii, jj), 'g', -1, 64))
		}
	}
	return sb.String()
}

// ParseCustom parses a kernel typed by the user: rows separated by ";" and
// values within a row separated by ",". Blank rows (e.g. a trailing ";") are
// ignored.
func ParseCustom(text string) (*Kernel, error) {
	var rows [][]float64
	for _, rowText := range strings.Split(text, ";") {
		rowText = strings.TrimSpace(rowText)
		if rowText == "" {
			continue
		}
		fields := strings.Split(rowText, ",")
		row := make([]float64, 0, len(fields))
		for _, field := range fields {
			field = strings.TrimSpace(field)
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: cannot parse %q as a number: %w", len(rows), field, ErrMalformedKernel)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return New(rows)
}
