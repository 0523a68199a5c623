package main

import (
	"errors"
	"flag"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/imagelab/filters"
	"github.com/janpfeifer/imagelab/imageio"
	"github.com/janpfeifer/imagelab/kernels"
	"github.com/janpfeifer/imagelab/raster"
)

// setFlags sets the flags for the duration of the test.
func setFlags(t *testing.T, values map[string]string) {
	t.Helper()
	for name, value := range values {
		f := flag.Lookup(name)
		if f == nil {
			t.Fatalf("unknown flag -%s", name)
		}
		previous := f.Value.String()
		if err := flag.Set(name, value); err != nil {
			t.Fatalf("flag.Set(%q, %q): %v", name, value, err)
		}
		t.Cleanup(func() { _ = flag.Set(f.Name, previous) })
	}
}

func TestSettingsFromFlagsDefaults(t *testing.T) {
	s, err := settingsFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(filters.DefaultSettings(), s); diff != "" {
		t.Errorf("default flags (-want +got):\n%s", diff)
	}
}

func TestSettingsFromFlags(t *testing.T) {
	setFlags(t, map[string]string{
		"rotate":      "30",
		"scale":       "2",
		"scale_y":     "0.5",
		"translate_x": "-4",
		"shear_y":     "0.25",
		"flip":        "v",
		"interp":      "nearest",
		"fill":        "#ff8000",
		"filter":      "Custom",
		"kernel":      "1,2,1",
		"normalize":   "false",
	})
	s, err := settingsFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	want := filters.DefaultSettings()
	want.Params = filters.Params{ScaleX: 2, ScaleY: 1, RotateDegrees: 30, ShearY: 0.25, TranslateX: -4}
	want.Flip, want.FlipAxis = true, filters.Vertical
	want.Interpolation = filters.Nearest
	want.Fill = color.RGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}
	want.Filter = filters.CustomFilter
	want.CustomKernel = "1,2,1"
	want.Normalize = false
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}
}

func TestSettingsFromFlagsErrors(t *testing.T) {
	for _, tc := range []struct {
		flags map[string]string
		want  error
	}{
		{map[string]string{"scale_x": "0"}, filters.ErrSingularTransform},
		{map[string]string{"flip": "diagonal"}, raster.ErrInvalidInput},
		{map[string]string{"interp": "lanczos"}, raster.ErrInvalidInput},
		{map[string]string{"fill": "red"}, raster.ErrInvalidInput},
		{map[string]string{"filter": "emboss"}, kernels.ErrUnknownPreset},
	} {
		t.Run(tc.want.Error(), func(t *testing.T) {
			setFlags(t, tc.flags)
			if _, err := settingsFromFlags(); !errors.Is(err, tc.want) {
				t.Errorf("flags %v: got error %v, want %v", tc.flags, err, tc.want)
			}
		})
	}
}

func TestRunBatch(t *testing.T) {
	original, err := loadOriginal("", 3)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	output := filepath.Join(dir, "out.bmp")
	compare := filepath.Join(dir, "compare.png")

	s := filters.DefaultSettings()
	s.Flip, s.FlipAxis = true, filters.Horizontal
	s.Filter = filters.CustomFilter
	s.CustomKernel = "1,2;3" // Malformed: falls back to sharpen, not a failure.
	if err := runBatch(original, s, output, compare, [2]string{"A", "B"}); err != nil {
		t.Fatalf("runBatch: %v", err)
	}

	got, err := imageio.Load(output, 3)
	if err != nil {
		t.Fatal(err)
	}
	flipped, err := filters.Flip(original, filters.Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	sharpen, _ := kernels.Preset(kernels.Sharpen)
	want, err := filters.Convolve(flipped, sharpen, true)
	if err != nil {
		t.Fatal(err)
	}
	if !want.Equal(got) {
		t.Errorf("batch result differs from flip+sharpen by up to %d", want.MaxAbsDiff(got))
	}
	cmpImage, err := imageio.Load(compare, 3)
	if err != nil {
		t.Fatal(err)
	}
	if cmpImage.Width <= 2*original.Width {
		t.Errorf("comparison is too narrow: %s", cmpImage)
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := parseHexColor("0a0B0c")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(color.Color(color.RGBA{R: 0x0A, G: 0x0B, B: 0x0C, A: 0xFF}), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for _, s := range []string{"", "#fff", "gg0000", "#1234567"} {
		if _, err := parseHexColor(s); !errors.Is(err, raster.ErrInvalidInput) {
			t.Errorf("parseHexColor(%q): expected ErrInvalidInput, got %v", s, err)
		}
	}
}

func TestSettingsFlagsRoundTrip(t *testing.T) {
	want := filters.DefaultSettings()
	want.Params.ShearX = 0.3
	want.Params.TranslateY = 7
	want.Flip, want.FlipAxis = true, filters.Horizontal
	want.Interpolation = filters.Bilinear
	want.Fill = color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}
	want.Filter = kernels.SobelX

	values := make(map[string]string)
	for _, arg := range want.Flags() {
		nameValue := strings.SplitN(strings.TrimPrefix(arg, "-"), "=", 2)
		values[nameValue[0]] = nameValue[1]
	}
	setFlags(t, values)
	got, err := settingsFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings from %v (-want +got):\n%s", want.Flags(), diff)
	}
}
