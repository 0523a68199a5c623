// Package clipboard copies edited images (and text) to the system clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/golang/glog"
	"golang.design/x/clipboard"
)

// CopyImage copies the image to the clipboard, encoded as PNG.
func CopyImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("no image to copy")
	}
	buff := new(bytes.Buffer)
	if err := png.Encode(buff, img); err != nil {
		return err
	}
	glog.V(2).Infof("Copying %d bytes of PNG (%s) to the clipboard", buff.Len(), img.Bounds())
	clipboard.Write(clipboard.FmtImage, buff.Bytes())
	return nil
}

// CopyText copies text to the clipboard.
func CopyText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
