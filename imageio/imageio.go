// Package imageio converts between image files and rasters: decoding of
// uploaded or opened files, encoding of results, a demo pattern used when
// there is no input image, screen capture and side-by-side comparisons.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoding.
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/raster"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoding.
)

// Output formats supported by Encode.
const (
	PNG  = "png"
	JPEG = "jpeg"
	BMP  = "bmp"
	TIFF = "tiff"
)

// JPEGQuality used when encoding JPEG files.
const JPEGQuality = 95

// Decode decodes any of the registered image formats (PNG, JPEG, GIF, BMP,
// TIFF, WebP) into a raster with the given number of channels. It also returns
// the name of the format.
func Decode(data []byte, channels int) (*raster.Raster, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image (%d bytes): %w", len(data), err)
	}
	glog.V(2).Infof("Decoded %s image of bounds %s", format, img.Bounds())
	r, err := raster.FromImage(img, channels)
	if err != nil {
		return nil, format, err
	}
	return r, format, nil
}

// Load reads and decodes the image file at path.
func Load(path string, channels int) (*raster.Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, _, err := Decode(data, channels)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return r, nil
}

// FormatFromPath returns the output format matching the file extension,
// defaulting to PNG, which is lossless.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return JPEG
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	}
	return PNG
}

// Encode writes the image in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case PNG, "":
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unknown output format %q: %w", format, raster.ErrInvalidInput)
}

// EncodeRaster encodes the raster in the given format.
func EncodeRaster(w io.Writer, r *raster.Raster, format string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return Encode(w, r.Image(), format)
}

// Save writes the image to path, in the format given by its extension.
func Save(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	format := FormatFromPath(path)
	glog.V(2).Infof("Saving %s image of bounds %s to %q", format, img.Bounds(), path)
	return Encode(f, img, format)
}
