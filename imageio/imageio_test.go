package imageio

import (
	"bytes"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/imagelab/raster"
)

func testRaster(t *testing.T, channels int) *raster.Raster {
	t.Helper()
	r, err := raster.New(9, 7, channels)
	if err != nil {
		t.Fatal(err)
	}
	for ii := range r.Pix {
		r.Pix[ii] = uint8(ii * 37)
	}
	return r
}

func TestLosslessRoundTrip(t *testing.T) {
	for _, format := range []string{PNG, BMP, TIFF} {
		for _, channels := range []int{1, 3} {
			r := testRaster(t, channels)
			var buf bytes.Buffer
			if err := EncodeRaster(&buf, r, format); err != nil {
				t.Fatalf("EncodeRaster(%s): %v", format, err)
			}
			got, gotFormat, err := Decode(buf.Bytes(), channels)
			if err != nil {
				t.Fatalf("Decode(%s): %v", format, err)
			}
			if gotFormat != format {
				t.Errorf("decoded format %q, want %q", gotFormat, format)
			}
			if diff := cmp.Diff(r, got); diff != "" {
				t.Errorf("%s round trip with %d channels (-want +got):\n%s", format, channels, diff)
			}
		}
	}
}

func TestJPEGRoundTripIsClose(t *testing.T) {
	r, _ := raster.Uniform(16, 16, 3, 120)
	var buf bytes.Buffer
	if err := EncodeRaster(&buf, r, JPEG); err != nil {
		t.Fatal(err)
	}
	got, format, err := Decode(buf.Bytes(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if format != JPEG {
		t.Errorf("format %q", format)
	}
	if d := got.MaxAbsDiff(r); d > 3 {
		t.Errorf("JPEG of a flat image differs by %d", d)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image"), 3); err == nil {
		t.Errorf("expected an error decoding garbage")
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeRaster(&buf, testRaster(t, 3), "xcf")
	if !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{
		"a.png":        PNG,
		"b.JPG":        JPEG,
		"c.jpeg":       JPEG,
		"d.bmp":        BMP,
		"e.tif":        TIFF,
		"f.tiff":       TIFF,
		"no_extension": PNG,
	} {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q)=%q, want %q", path, got, want)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	r := testRaster(t, 3)
	path := filepath.Join(t.TempDir(), "result.png")
	if err := Save(path, r.Image()); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png"), 3); err == nil {
		t.Errorf("expected error loading a missing file")
	}
}

func TestDemoPattern(t *testing.T) {
	r, err := DemoPattern(64, 48, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.Width != 64 || r.Height != 48 || r.Channels != 3 {
		t.Fatalf("got %s", r)
	}
	if diff := cmp.Diff([]uint8{cornerMarker.R, cornerMarker.G, cornerMarker.B}, r.Pix[:3]); diff != "" {
		t.Errorf("top-left corner marker (-want +got):\n%s", diff)
	}
	last := r.Offset(63, 47)
	if r.Pix[last] == cornerMarker.R && r.Pix[last+1] == cornerMarker.G {
		t.Errorf("bottom-right corner should not have the marker")
	}

	gray, err := DemoPattern(10, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if gray.Channels != 1 {
		t.Errorf("got %d channels", gray.Channels)
	}
	if _, err := DemoPattern(0, 10, 3); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	original := testRaster(t, 3)
	result, _ := raster.Uniform(5, 11, 1, 0)
	img, err := Compare(original, result, [2]string{"Original", "Result"})
	if err != nil {
		t.Fatal(err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != original.Width+compareGap+result.Width {
		t.Errorf("comparison width %d", bounds.Dx())
	}
	if bounds.Dy() <= result.Height {
		t.Errorf("comparison height %d leaves no room for captions", bounds.Dy())
	}

	// Original is copied as is.
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: original.Pix[3], G: original.Pix[4], B: original.Pix[5], A: 0xFF}) {
		t.Errorf("pixel (1, 0) = %v", got)
	}
	// Gap is white.
	if got := img.RGBAAt(original.Width+1, 0); got != (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		t.Errorf("gap pixel = %v", got)
	}

	// Some caption pixels were drawn.
	dark := 0
	for y := result.Height; y < bounds.Max.Y; y++ {
		for x := 0; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Errorf("no caption was rendered")
	}
}
