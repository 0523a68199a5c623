package imageio

import (
	"fmt"
	"image"
	"image/color"

	"github.com/janpfeifer/imagelab/raster"
)

var (
	bgDark, bgLight = color.RGBA{R: 200, G: 200, B: 200, A: 0xFF}, color.RGBA{R: 240, G: 240, B: 240, A: 0xFF}
	gridColor       = color.RGBA{R: 90, G: 90, B: 90, A: 0xFF}
	axisX, axisY    = color.RGBA{R: 220, G: 40, B: 40, A: 0xFF}, color.RGBA{R: 40, G: 90, B: 220, A: 0xFF}
	cornerMarker    = color.RGBA{R: 30, G: 160, B: 60, A: 0xFF}
)

// DemoPatternSize is the default size of the demo pattern.
const DemoPatternSize = 256

// DemoPattern generates the image used when the user didn't provide one: a
// checkerboard with grid lines, a red horizontal and a blue vertical line
// through the center, and a green square on the top-left corner, so that
// rotations and flips are easy to see.
func DemoPattern(width, height, channels int) (*raster.Raster, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("demo pattern %dx%d: %w", width, height, raster.ErrInvalidInput)
	}
	boxSize := width
	if height < boxSize {
		boxSize = height
	}
	boxSize /= 8
	if boxSize < 2 {
		boxSize = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cx, cy := width/2, height/2
	marker := boxSize
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, demoPixel(x, y, cx, cy, boxSize, marker))
		}
	}
	return raster.FromImage(img, channels)
}

func demoPixel(x, y, cx, cy, boxSize, marker int) color.RGBA {
	switch {
	case x < marker && y < marker:
		return cornerMarker
	case y == cy:
		return axisX
	case x == cx:
		return axisY
	case x%boxSize == 0 || y%boxSize == 0:
		return gridColor
	}
	return bgPattern(x, y, boxSize)
}

func bgPattern(x, y, boxSize int) color.RGBA {
	if (x/boxSize)%2 == (y/boxSize)%2 {
		return bgDark
	}
	return bgLight
}
