package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/janpfeifer/imagelab/raster"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// DPI constant. Ideally it would be read from the various system.
const DPI = 96

// CaptionSize is the font size, in points, of the comparison captions.
const CaptionSize = 14.0

// compareGap is the number of pixels between the two images.
const compareGap = 16

var (
	captionFont     *truetype.Font
	captionFontErr  error
	captionFontOnce sync.Once
)

func loadCaptionFont() (*truetype.Font, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = truetype.Parse(gobold.TTF)
	})
	return captionFont, captionFontErr
}

// Compare renders original and result side by side on a white background,
// with a caption centered under each of them.
func Compare(original, result *raster.Raster, captions [2]string) (*image.RGBA, error) {
	for _, r := range []*raster.Raster{original, result} {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	ttf, err := loadCaptionFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font golang.org/x/image/font/gofont/gobold: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    CaptionSize,
		DPI:     DPI,
		Hinting: font.HintingFull,
	})
	defer func() { _ = face.Close() }()

	fontPixelsF := CaptionSize*DPI/72 + 0.99
	fontPixels := int(fontPixelsF)
	captionHeight := 2 * fontPixels
	height := original.Height
	if result.Height > height {
		height = result.Height
	}
	width := original.Width + compareGap + result.Width
	img := image.NewRGBA(image.Rect(0, 0, width, height+captionHeight))
	draw.Draw(img, img.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)

	left := image.Rect(0, 0, original.Width, original.Height)
	right := image.Rect(original.Width+compareGap, 0, width, result.Height)
	draw.Draw(img, left, original.Image(), image.Point{}, draw.Src)
	draw.Draw(img, right, result.Image(), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	baseline := height + fontPixels + fontPixels/3
	for ii, area := range []image.Rectangle{left, right} {
		text := captions[ii]
		if text == "" {
			continue
		}
		textWidth := d.MeasureString(text).Ceil()
		x := area.Min.X + (area.Dx()-textWidth)/2
		if x < area.Min.X {
			x = area.Min.X
		}
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)}
		d.DrawString(text)
	}
	return img, nil
}
