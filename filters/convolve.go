package filters

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/kernels"
	"github.com/janpfeifer/imagelab/raster"
)

// Convolve applies the kernel to every channel of r independently and returns
// a new raster of the same shape.
//
// The raster is padded by replicating its border pixels, so there are no dark
// edges. If normalize is set and the kernel sum is not ~0, weights are divided
// by their sum first. Accumulation is done in float64 and each output sample
// is clamped to [0, 255] and rounded only once, at the end.
//
// Kernels larger than the raster in either dimension are rejected with
// raster.ErrInvalidInput.
func Convolve(r *raster.Raster, k *kernels.Kernel, normalize bool) (*raster.Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("nil kernel: %w", raster.ErrInvalidInput)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	if k.Width > r.Width || k.Height > r.Height {
		return nil, fmt.Errorf("kernel %dx%d larger than image %dx%d: %w",
			k.Height, k.Width, r.Height, r.Width, raster.ErrInvalidInput)
	}
	if normalize {
		k = k.Normalized()
	}
	if col, row, ok := k.Separate(); ok {
		glog.V(2).Infof("Convolve(%s, %dx%d kernel): separable", r, k.Height, k.Width)
		return convolveSeparable(r, col, row), nil
	}
	glog.V(2).Infof("Convolve(%s, %dx%d kernel): direct", r, k.Height, k.Width)
	return convolveDirect(r, k), nil
}

// convolveDirect is the straightforward O(H*W*Kh*Kw*C) implementation.
func convolveDirect(r *raster.Raster, k *kernels.Kernel) *raster.Raster {
	out := r.NewLike()
	ch, cw := k.Center()
	channels := r.Channels
	acc := make([]float64, channels)
	pos := 0
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			for c := range acc {
				acc[c] = 0
			}
			for ki := 0; ki < k.Height; ki++ {
				sy := raster.ClampInt(y+ki-ch, 0, r.Height-1)
				for kj := 0; kj < k.Width; kj++ {
					w := k.Weights[ki*k.Width+kj]
					if w == 0 {
						continue
					}
					sx := raster.ClampInt(x+kj-cw, 0, r.Width-1)
					src := r.Offset(sx, sy)
					for c := 0; c < channels; c++ {
						acc[c] += w * float64(r.Pix[src+c])
					}
				}
			}
			for c := 0; c < channels; c++ {
				out.Pix[pos] = raster.ClampRound(acc[c])
				pos++
			}
		}
	}
	return out
}

// convolveSeparable convolves with the rank-1 kernel col ⊗ row: a vertical
// pass with col into a float buffer, then a horizontal pass with row. Edge
// replication commutes with the vertical pass, so clamping the column index
// of the intermediate buffer is the same as padding the input.
func convolveSeparable(r *raster.Raster, col, row []float64) *raster.Raster {
	channels := r.Channels
	stride := r.Width * channels
	ch, cw := len(col)/2, len(row)/2

	tmp := make([]float64, len(r.Pix))
	for y := 0; y < r.Height; y++ {
		line := tmp[y*stride : (y+1)*stride]
		for ki, w := range col {
			if w == 0 {
				continue
			}
			sy := raster.ClampInt(y+ki-ch, 0, r.Height-1)
			src := r.Pix[sy*stride : (sy+1)*stride]
			for ii, v := range src {
				line[ii] += w * float64(v)
			}
		}
	}

	out := r.NewLike()
	for y := 0; y < r.Height; y++ {
		line := tmp[y*stride : (y+1)*stride]
		for x := 0; x < r.Width; x++ {
			for c := 0; c < channels; c++ {
				var acc float64
				for kj, w := range row {
					if w == 0 {
						continue
					}
					sx := raster.ClampInt(x+kj-cw, 0, r.Width-1)
					acc += w * line[sx*channels+c]
				}
				out.Pix[y*stride+x*channels+c] = raster.ClampRound(acc)
			}
		}
	}
	return out
}
