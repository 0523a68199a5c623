// imagelab applies affine transforms and convolution filters to images,
// either interactively or in batch mode:
//
//	imagelab -input=photo.jpg
//	imagelab -batch -input=photo.jpg -output=out.png -rotate=30 -filter=gaussian_5
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/editor"
	"github.com/janpfeifer/imagelab/filters"
	"github.com/janpfeifer/imagelab/imageio"
	"github.com/janpfeifer/imagelab/kernels"
	"github.com/janpfeifer/imagelab/locale"
	"github.com/janpfeifer/imagelab/raster"
)

var (
	flagBatch   = flag.Bool("batch", false, "Apply the settings to -input and write -output, without opening the editor.")
	flagInput   = flag.String("input", "", "Image to edit. If empty the demo pattern is used.")
	flagOutput  = flag.String("output", "result.png", "Where to save the result in -batch mode. The format is given by the extension.")
	flagCompare = flag.String("compare", "", "If set in -batch mode, also save original and result side by side to this file.")
	flagGray    = flag.Bool("gray", false, "Load the image in grayscale (1 channel).")
	flagDisplay = flag.Int("display", 0, "Display to capture with \"Capture screen\".")

	flagRotate     = flag.Float64("rotate", 0, "Rotation in degrees around the image center, counter-clockwise positive as seen on screen.")
	flagScale      = flag.Float64("scale", 1, "Uniform scale, multiplied by -scale_x and -scale_y.")
	flagScaleX     = flag.Float64("scale_x", 1, "Horizontal scale.")
	flagScaleY     = flag.Float64("scale_y", 1, "Vertical scale.")
	flagTranslateX = flag.Float64("translate_x", 0, "Horizontal translation in pixels.")
	flagTranslateY = flag.Float64("translate_y", 0, "Vertical translation in pixels, positive is down.")
	flagShearX     = flag.Float64("shear_x", 0, "Horizontal shear factor.")
	flagShearY     = flag.Float64("shear_y", 0, "Vertical shear factor.")
	flagFlip       = flag.String("flip", "", "Flip the image before transforming it: horizontal (h), vertical (v) or both (hv).")
	flagInterp     = flag.String("interp", filters.Bicubic.String(), fmt.Sprintf("Interpolation, one of %v.", filters.InterpolationNames()))
	flagFill       = flag.String("fill", "", "Background color of the areas not covered by the transformed image, as RRGGBB. Default is white.")

	flagFilter    = flag.String("filter", filters.NoFilter, fmt.Sprintf("Convolution filter, one of %v.", filters.FilterOptions()))
	flagKernel    = flag.String("kernel", "", "Custom kernel used with -filter=custom, rows separated by ';', e.g. \"0,-1,0; -1,5,-1; 0,-1,0\".")
	flagNormalize = flag.Bool("normalize", true, "Divide the kernel by the sum of its weights, if not zero.")

	flagLanguage = flag.String("lang", "", "Language of the editor: English, Indonesia, 中文 or a BCP 47 tag. Default is the last one used.")
	flagTheme    = flag.String("theme", "", "Theme of the editor: light or dark. Default is the last one used.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	settings, err := settingsFromFlags()
	if err != nil {
		glog.Fatalf("Invalid flags: %v", err)
	}
	channels := 3
	if *flagGray {
		channels = 1
	}
	loadChannels := channels
	if !*flagBatch {
		// Editor converts to channels itself, and can switch back to color.
		loadChannels = 3
	}
	original, err := loadOriginal(*flagInput, loadChannels)
	if err != nil {
		glog.Fatalf("Failed to load image: %v", err)
	}

	if *flagBatch {
		labels := locale.Labels(locale.Match(*flagLanguage))
		captions := [2]string{labels[locale.Original], labels[locale.Result]}
		if err := runBatch(original, settings, *flagOutput, *flagCompare, captions); err != nil {
			glog.Fatalf("Failed: %v", err)
		}
		return
	}

	if *flagFill == "" {
		// Editor uses the fill color from the previous session.
		settings.Fill = nil
	}
	editor.Run(editor.Config{
		Language: *flagLanguage,
		Theme:    *flagTheme,
		Channels: channels,
		Display:  *flagDisplay,
	}, original, settings)
}

// settingsFromFlags converts the command-line flags to filters.Settings.
func settingsFromFlags() (filters.Settings, error) {
	s := filters.DefaultSettings()
	s.Params = filters.Params{
		ScaleX:        *flagScale * *flagScaleX,
		ScaleY:        *flagScale * *flagScaleY,
		RotateDegrees: *flagRotate,
		ShearX:        *flagShearX,
		ShearY:        *flagShearY,
		TranslateX:    *flagTranslateX,
		TranslateY:    *flagTranslateY,
	}
	if err := s.Params.Validate(); err != nil {
		return s, err
	}
	if *flagFlip != "" {
		axis, err := filters.ParseAxis(*flagFlip)
		if err != nil {
			return s, err
		}
		s.Flip, s.FlipAxis = true, axis
	}
	interp, err := filters.ParseInterpolation(*flagInterp)
	if err != nil {
		return s, err
	}
	s.Interpolation = interp
	if *flagFill != "" {
		if s.Fill, err = parseHexColor(*flagFill); err != nil {
			return s, err
		}
	}

	s.Filter = strings.ToLower(strings.TrimSpace(*flagFilter))
	if s.Filter == "" {
		s.Filter = filters.NoFilter
	}
	if s.Filter != filters.NoFilter && s.Filter != filters.CustomFilter {
		if _, err := kernels.Preset(s.Filter); err != nil {
			return s, err
		}
	}
	if *flagKernel != "" {
		s.CustomKernel = *flagKernel
	}
	s.Normalize = *flagNormalize
	return s, nil
}

// parseHexColor parses colors in the RRGGBB format, with an optional leading '#'.
func parseHexColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q, expected RRGGBB: %w", s, raster.ErrInvalidInput)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q, expected RRGGBB: %w", s, raster.ErrInvalidInput)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// loadOriginal loads the image to edit, or creates the demo pattern if path is empty.
func loadOriginal(path string, channels int) (*raster.Raster, error) {
	if path == "" {
		glog.Infof("No -input given, using the demo pattern")
		return imageio.DemoPattern(imageio.DemoPatternSize, imageio.DemoPatternSize, channels)
	}
	r, err := imageio.Load(path, channels)
	if err != nil {
		return nil, err
	}
	glog.Infof("Loaded %q: %s", path, r)
	return r, nil
}

// runBatch applies the settings to original and saves the result to output,
// and optionally the side by side comparison to compare.
func runBatch(original *raster.Raster, settings filters.Settings, output, compare string, captions [2]string) error {
	result, err := settings.Apply(original)
	var fallback *filters.FallbackError
	if errors.As(err, &fallback) {
		glog.Warningf("Custom kernel %q is malformed, using %s: %v", settings.CustomKernel, filters.FallbackKernel, fallback.Err)
	} else if err != nil {
		return err
	}
	if err := imageio.Save(output, result.Image()); err != nil {
		return err
	}
	glog.Infof("Saved result %s to %q", result, output)

	if compare != "" {
		img, err := imageio.Compare(original, result, captions)
		if err != nil {
			return err
		}
		if err := imageio.Save(compare, img); err != nil {
			return err
		}
		glog.Infof("Saved comparison to %q", compare)
	}
	return nil
}
