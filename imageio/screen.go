package imageio

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/raster"
	"github.com/kbinani/screenshot"
)

// CaptureScreen takes a screenshot of the given display and returns it as a
// raster, to be used as input image.
func CaptureScreen(display, channels int) (*raster.Raster, error) {
	n := screenshot.NumActiveDisplays()
	if display < 0 || display >= n {
		return nil, fmt.Errorf("display %d requested, but there are %d active displays: %w",
			display, n, raster.ErrInvalidInput)
	}
	bounds := screenshot.GetDisplayBounds(display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capturing display %d: %w", display, err)
	}
	glog.V(2).Infof("Screenshot of display %d captured, bounds: %+v", display, bounds)
	return raster.FromImage(img, channels)
}
