package filters

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/imagelab/raster"
)

func transformPoint(m mgl64.Mat3, x, y float64) (float64, float64) {
	p := m.Mul3x1(mgl64.Vec3{x, y, 1})
	return p.X(), p.Y()
}

func assertPoint(t *testing.T, name string, m mgl64.Mat3, x, y, wantX, wantY float64) {
	t.Helper()
	gotX, gotY := transformPoint(m, x, y)
	if math.Abs(gotX-wantX) > 1e-9 || math.Abs(gotY-wantY) > 1e-9 {
		t.Errorf("%s: (%g, %g) -> (%g, %g), want (%g, %g)", name, x, y, gotX, gotY, wantX, wantY)
	}
}

func TestPrimitives(t *testing.T) {
	assertPoint(t, "translation", Translation(3, -2), 1, 1, 4, -1)
	assertPoint(t, "rotation(90)", Rotation(90), 1, 0, 0, 1)
	assertPoint(t, "rotation(-90)", Rotation(-90), 1, 0, 0, -1)
	assertPoint(t, "scaling", Scaling(2, 0.5), 3, 4, 6, 2)
	assertPoint(t, "shearing x", Shearing(0.5, 0), 0, 2, 1, 2)
	assertPoint(t, "shearing y", Shearing(0, 0.25), 4, 0, 4, 1)
	assertPoint(t, "reflection", Reflection(Both), 2, 3, -2, -3)
	for _, m := range []mgl64.Mat3{Translation(1, 2), Rotation(33), Scaling(2, 3), Shearing(0.1, 0.2), Reflection(Vertical)} {
		if !IsAffine(m) {
			t.Errorf("%v is not affine", m)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	// Translate first, then scale.
	m := Compose(Translation(1, 0), Scaling(2, 1))
	assertPoint(t, "translate then scale", m, 1, 0, 4, 0)
	// Scale first, then translate.
	m = Compose(Scaling(2, 1), Translation(1, 0))
	assertPoint(t, "scale then translate", m, 1, 0, 3, 0)

	if diff := cmp.Diff(mgl64.Ident3(), Compose()); diff != "" {
		t.Errorf("empty Compose (-want +got):\n%s", diff)
	}
}

func TestCentered(t *testing.T) {
	m := Centered(Rotation(90), 2, 2)
	assertPoint(t, "center is fixed", m, 2, 2, 2, 2)
	assertPoint(t, "rotate around center", m, 3, 2, 2, 3)
}

func TestIdentityPipelineIsExact(t *testing.T) {
	m := Compose(Rotation(0), Translation(0, 0), Scaling(1, 1), Shearing(0, 0))
	if diff := cmp.Diff(mgl64.Ident3(), m); diff != "" {
		t.Fatalf("composed identity (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(mgl64.Ident3(), Identity().Matrix(17, 9)); diff != "" {
		t.Fatalf("Identity().Matrix (-want +got):\n%s", diff)
	}
	for _, interp := range []Interpolation{Bicubic, Bilinear, Nearest} {
		for _, channels := range []int{1, 3} {
			r := randomRaster(t, 13, 8, channels, 5)
			got, err := ApplyInterp(r, m, color.Black, interp)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(r, got); diff != "" {
				t.Errorf("%s identity, %d channels (-want +got):\n%s", interp, channels, diff)
			}
		}
	}
}

func TestRotation360(t *testing.T) {
	r := randomRaster(t, 16, 11, 3, 9)
	p := Identity()
	p.RotateDegrees = 360
	got, err := Apply(r, p.Matrix(r.Width, r.Height), color.Black)
	if err != nil {
		t.Fatal(err)
	}
	if d := got.MaxAbsDiff(r); d > 1 {
		t.Errorf("rotation by 360 degrees differs by %d", d)
	}
}

func TestRotation180IsFlipBoth(t *testing.T) {
	for _, size := range [][2]int{{8, 6}, {7, 5}} {
		r := randomRaster(t, size[0], size[1], 3, 13)
		p := Identity()
		p.RotateDegrees = 180
		rotated, err := Apply(r, p.Matrix(r.Width, r.Height), color.Black)
		if err != nil {
			t.Fatal(err)
		}
		flipped, err := Flip(r, Both)
		if err != nil {
			t.Fatal(err)
		}
		if d := rotated.MaxAbsDiff(flipped); d > 1 {
			t.Errorf("%dx%d: rotation by 180 and flip both differ by %d", size[0], size[1], d)
		}
	}
}

func TestRotationDirectionOnScreen(t *testing.T) {
	// Marker right of center; y points down.
	r := grayFromRows(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 200},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	for _, tc := range []struct {
		degrees float64
		x, y    int
	}{
		{90, 2, 0},
		{-90, 2, 4},
		{180, 0, 2},
	} {
		p := Identity()
		p.RotateDegrees = tc.degrees
		got, err := ApplyInterp(r, p.Matrix(r.Width, r.Height), color.Black, Nearest)
		if err != nil {
			t.Fatal(err)
		}
		if v := got.At(tc.x, tc.y, 0); v != 200 {
			t.Errorf("rotate %g: pixel (%d, %d) = %d, want the marker 200", tc.degrees, tc.x, tc.y, v)
		}
		if got.At(4, 2, 0) != 0 {
			t.Errorf("rotate %g: marker still at (4, 2)", tc.degrees)
		}
	}
}

func TestTranslateWholePixels(t *testing.T) {
	r := randomRaster(t, 5, 4, 1, 1)
	p := Identity()
	p.TranslateX, p.TranslateY = 2, 1
	fill := color.Gray{Y: 7}
	for _, interp := range []Interpolation{Bicubic, Bilinear, Nearest} {
		got, err := ApplyInterp(r, p.Matrix(r.Width, r.Height), fill, interp)
		if err != nil {
			t.Fatal(err)
		}
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				want := uint8(7)
				if x >= 2 && y >= 1 {
					want = r.At(x-2, y-1, 0)
				}
				if g := got.At(x, y, 0); g != want {
					t.Errorf("%s: pixel (%d, %d)=%d, want %d", interp, x, y, g, want)
				}
			}
		}
	}
}

func TestApplyFill(t *testing.T) {
	r := randomRaster(t, 4, 4, 3, 2)
	red := color.RGBA{R: 255, A: 255}
	got, err := Apply(r, Translation(100, 0), red)
	if err != nil {
		t.Fatal(err)
	}
	for ii := 0; ii < len(got.Pix); ii += 3 {
		if diff := cmp.Diff([]uint8{255, 0, 0}, got.Pix[ii:ii+3]); diff != "" {
			t.Fatalf("pixel %d (-want +got):\n%s", ii/3, diff)
		}
	}
}

func TestApplyScaleKeepsCenter(t *testing.T) {
	r, _ := raster.New(5, 5, 1)
	r.Set(2, 2, 0, 200)
	p := Identity()
	p.ScaleX, p.ScaleY = 2, 2
	got, err := ApplyInterp(r, p.Matrix(5, 5), color.White, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	if got.At(2, 2, 0) != 200 {
		t.Errorf("center pixel moved when scaling around the center: %v", got.Pix)
	}
	if got.Width != 5 || got.Height != 5 {
		t.Errorf("output is %dx%d, want 5x5", got.Width, got.Height)
	}
}

func TestApplySingular(t *testing.T) {
	r := randomRaster(t, 4, 4, 1, 2)
	for _, m := range []mgl64.Mat3{Scaling(0, 1), Scaling(1, 1e-12), Shearing(1, 1)} {
		if _, err := Apply(r, m, color.White); !errors.Is(err, ErrSingularTransform) {
			t.Errorf("Apply(%v): expected ErrSingularTransform, got %v", m, err)
		}
	}
	projective := mgl64.Ident3()
	projective[2] = 0.5 // Row 2, column 0.
	if _, err := Apply(r, projective, color.White); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("projective matrix: expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	r := randomRaster(t, 9, 9, 3, 21)
	before := r.Clone()
	p := Params{ScaleX: 1.3, ScaleY: 0.7, RotateDegrees: 33, ShearX: 0.2, TranslateX: 3}
	if _, err := Apply(r, p.Matrix(r.Width, r.Height), color.White); err != nil {
		t.Fatal(err)
	}
	if !r.Equal(before) {
		t.Errorf("Apply modified its input")
	}
}

func TestFlip(t *testing.T) {
	r := grayFromRows(t, [][]uint8{
		{1, 2, 3},
		{4, 5, 6},
	})
	for _, tc := range []struct {
		axis Axis
		want [][]uint8
	}{
		{Horizontal, [][]uint8{{3, 2, 1}, {6, 5, 4}}},
		{Vertical, [][]uint8{{4, 5, 6}, {1, 2, 3}}},
		{Both, [][]uint8{{6, 5, 4}, {3, 2, 1}}},
	} {
		got, err := Flip(r, tc.axis)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(grayFromRows(t, tc.want), got); diff != "" {
			t.Errorf("Flip(%s) (-want +got):\n%s", tc.axis, diff)
		}
	}
	if _, err := Flip(r, Axis(7)); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("invalid axis: got %v", err)
	}
}

func TestFlipProperties(t *testing.T) {
	r := randomRaster(t, 7, 4, 3, 77)
	for _, axis := range []Axis{Horizontal, Vertical, Both} {
		once, _ := Flip(r, axis)
		twice, _ := Flip(once, axis)
		if !twice.Equal(r) {
			t.Errorf("double Flip(%s) is not the identity", axis)
		}
	}
	h, _ := Flip(r, Horizontal)
	hv, _ := Flip(h, Vertical)
	both, _ := Flip(r, Both)
	if !both.Equal(hv) {
		t.Errorf("Flip(both) != Flip(Flip(horizontal), vertical)")
	}
}

func TestParseAxisAndInterpolation(t *testing.T) {
	for s, want := range map[string]Axis{"horizontal": Horizontal, "V": Vertical, " both ": Both} {
		got, err := ParseAxis(s)
		if err != nil || got != want {
			t.Errorf("ParseAxis(%q)=%v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseAxis("diagonal"); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("ParseAxis(diagonal): got %v", err)
	}
	for _, name := range InterpolationNames() {
		interp, err := ParseInterpolation(name)
		if err != nil || interp.String() != name {
			t.Errorf("ParseInterpolation(%q)=%v, %v", name, interp, err)
		}
	}
	if _, err := ParseInterpolation("lanczos"); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("ParseInterpolation(lanczos): got %v", err)
	}
}

func TestCatmullRomWeights(t *testing.T) {
	if diff := cmp.Diff([4]float64{0, 1, 0, 0}, catmullRom(0)); diff != "" {
		t.Errorf("weights at t=0 (-want +got):\n%s", diff)
	}
	for _, x := range []float64{0.1, 0.5, 0.9} {
		w := catmullRom(x)
		if sum := w[0] + w[1] + w[2] + w[3]; math.Abs(sum-1) > 1e-12 {
			t.Errorf("weights at t=%g sum to %g", x, sum)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	if err := Identity().Validate(); err != nil {
		t.Errorf("Identity(): %v", err)
	}
	p := Identity()
	p.ScaleY = 0
	if err := p.Validate(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("zero scale: got %v", err)
	}
	p = Identity()
	p.RotateDegrees = math.NaN()
	if err := p.Validate(); !errors.Is(err, raster.ErrInvalidInput) {
		t.Errorf("NaN rotation: got %v", err)
	}
}
