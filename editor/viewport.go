package editor

import (
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/locale"
	"github.com/janpfeifer/imagelab/raster"
)

// ViewPort displays a raster with zoom (mouse scroll) and panning (drag).
// Hovering the mouse over it shows the pixel values in the status bar.
//
// Two ViewPorts can be linked, so they always display the same area: this
// is used to compare the original and the result.
//
// It is both a CanvasObject and a WidgetRenderer.
type ViewPort struct {
	widget.BaseWidget

	// ed points back to application object.
	ed *Editor

	// Linked view port that follows zoom and panning of this one.
	linked *ViewPort

	mu  sync.Mutex
	img *raster.Raster

	// Log2Zoom is the log2 of the zoom multiplier.
	Log2Zoom float64
	// fitPending is set when the zoom should be reset to fit the image, once
	// the size of the view port is known.
	fitPending bool

	// Area of the image that is visible: start (viewX, viewY) and sizes, in
	// image pixels. Each may be zoomed in/out when displaying.
	viewX, viewY, viewW, viewH int

	// Fyne objects.
	minSize fyne.Size
	raster  *canvas.Raster

	mouseMoveEvents chan fyne.Position

	// Cache image for current dimensions/zoom/translation.
	cache *image.RGBA

	// Dynamic dragging
	dragEvents                     chan *fyne.DragEvent
	dragStart                      fyne.Position
	dragStartViewX, dragStartViewY int
}

// Ensure ViewPort implements the following interfaces.
var (
	vpPlaceholder = &ViewPort{}
	_             = fyne.CanvasObject(vpPlaceholder)
	_             = fyne.Draggable(vpPlaceholder)
	_             = fyne.Scrollable(vpPlaceholder)
	_             = desktop.Hoverable(vpPlaceholder)
)

const (
	dragEventsQueue      = 1000
	mouseMoveEventsQueue = 1000
)

// NewViewPort creates a view port showing img, which may be nil.
func NewViewPort(ed *Editor, img *raster.Raster) (vp *ViewPort) {
	vp = &ViewPort{
		ed:              ed,
		img:             img,
		fitPending:      true,
		mouseMoveEvents: make(chan fyne.Position, mouseMoveEventsQueue),
	}
	go vp.consumeMouseMoveEvents()
	vp.raster = canvas.NewRaster(vp.draw)
	vp.ExtendBaseWidget(vp)
	return
}

// Link makes other follow the zoom and panning of vp, and vice-versa.
func (vp *ViewPort) Link(other *ViewPort) {
	vp.linked = other
	other.linked = vp
}

// SetImage changes the image displayed, preserving zoom and panning.
func (vp *ViewPort) SetImage(img *raster.Raster) {
	vp.mu.Lock()
	vp.img = img
	vp.mu.Unlock()
	vp.Refresh()
}

// Image returns the image displayed.
func (vp *ViewPort) Image() *raster.Raster {
	vp.mu.Lock()
	defer vp.mu.Unlock()
	return vp.img
}

// Close stops the goroutine handling mouse events.
func (vp *ViewPort) Close() {
	close(vp.mouseMoveEvents)
}

func (vp *ViewPort) Resize(size fyne.Size) {
	glog.V(2).Infof("Resize(size={w=%g, h=%g})", size.Width, size.Height)
	vp.BaseWidget.Resize(size)
	vp.raster.Resize(size)
}

func (vp *ViewPort) SetMinSize(size fyne.Size) {
	vp.minSize = size
}

func (vp *ViewPort) MinSize() fyne.Size {
	return vp.minSize
}

func (vp *ViewPort) CreateRenderer() fyne.WidgetRenderer {
	glog.V(2).Info("CreateRenderer()")
	return vp
}

func (vp *ViewPort) Destroy() {}

func (vp *ViewPort) Layout(size fyne.Size) {
	// Resize to given size
	vp.raster.Resize(size)
}

func (vp *ViewPort) Refresh() {
	vp.renderCache()
	canvas.Refresh(vp)
}

func (vp *ViewPort) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{vp.raster}
}

// PixelSize returns the size in pixels of the this CanvasObject, based on the last request to redraw.
func (vp *ViewPort) PixelSize() (x, y int) {
	if vp.cache == nil {
		return 0, 0
	}
	return wh(vp.cache)
}

// FitImage resets zoom and panning so the whole image is visible.
func (vp *ViewPort) FitImage() {
	pixelW, pixelH := vp.PixelSize()
	img := vp.Image()
	if img == nil || pixelW == 0 || pixelH == 0 {
		vp.fitPending = true
		return
	}
	vp.fitPending = false
	vp.Log2Zoom = fitLog2Zoom(img.Width, img.Height, pixelW, pixelH)
	vp.updateViewSize()
	// Center image.
	vp.viewX = (img.Width - vp.viewW) / 2
	vp.viewY = (img.Height - vp.viewH) / 2
	vp.Refresh()
	vp.syncLinked()
}

// fitLog2Zoom returns the largest zoom where an image of imgW x imgH fits
// in pixelW x pixelH pixels.
func fitLog2Zoom(imgW, imgH, pixelW, pixelH int) float64 {
	zoom := math.Max(float64(imgW)/float64(pixelW), float64(imgH)/float64(pixelH))
	return -math.Log2(zoom)
}

// syncLinked copies the geometry to the linked view port.
func (vp *ViewPort) syncLinked() {
	other := vp.linked
	if other == nil {
		return
	}
	other.Log2Zoom = vp.Log2Zoom
	other.fitPending = false
	other.viewX, other.viewY, other.viewW, other.viewH = vp.viewX, vp.viewY, vp.viewW, vp.viewH
	other.Refresh()
}

func (vp *ViewPort) Scrolled(ev *fyne.ScrollEvent) {
	glog.V(2).Infof("Scrolled(dx=%f, dy=%f, position=%+v)", ev.Scrolled.DX, ev.Scrolled.DY, ev.Position)
	size := vp.Size()

	// We want to zoom, but preserve the image pixel being viewed at the mouse position.
	ratioX := ev.Position.X / size.Width
	ratioY := ev.Position.Y / size.Height
	imageX := int(ratioX*float32(vp.viewW) + float32(vp.viewX) + 0.5)
	imageY := int(ratioY*float32(vp.viewH) + float32(vp.viewY) + 0.5)

	// Update zoom.
	vp.Log2Zoom += float64(ev.Scrolled.DY) / 50.0
	vp.fitPending = false

	// Update geometry.
	vp.updateViewSize()
	vp.viewX = imageX - int(ratioX*float32(vp.viewW)+0.5)
	vp.viewY = imageY - int(ratioY*float32(vp.viewH)+0.5)
	vp.Refresh()
	vp.syncLinked()
}

func (vp *ViewPort) updateViewSize() {
	zoom := vp.zoom()
	pixelW, pixelH := vp.PixelSize()
	vp.viewW = int(float64(pixelW)*zoom + 0.5)
	vp.viewH = int(float64(pixelH)*zoom + 0.5)
}

// draw implements canvas.Raster Generator: it generates the image that will be drawn.
// The image should already be rendered in vp.cache, but this handles exception cases.
func (vp *ViewPort) draw(w, h int) image.Image {
	currentW, currentH := vp.PixelSize()
	if currentW == w && currentH == h {
		// Cache is good, reuse it.
		return vp.cache
	}

	// Regenerate cache.
	glog.V(2).Infof("draw(w=%d, h=%d): new cache", w, h)
	vp.cache = image.NewRGBA(image.Rect(0, 0, w, h))
	if vp.fitPending {
		vp.FitImage()
		if !vp.fitPending {
			return vp.cache
		}
	}
	vp.updateViewSize()
	vp.renderCache()
	return vp.cache
}

// wh extracts the width and height of an image.
func wh(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	rect := img.Bounds()
	return rect.Dx(), rect.Dy()
}

func (vp *ViewPort) zoom() float64 {
	return math.Exp2(-vp.Log2Zoom)
}

func (vp *ViewPort) renderCache() {
	if vp.cache == nil {
		return
	}
	renderView(vp.cache, vp.Image(), vp.zoom(), vp.viewX, vp.viewY)
}

// renderView draws into dst the area of img starting at (viewX, viewY),
// where each dst pixel covers zoom image pixels. Areas outside the image get
// a checkerboard background.
func renderView(dst *image.RGBA, img *raster.Raster, zoom float64, viewX, viewY int) {
	const bytesPerPixel = 4 // RGBA.
	w, h := wh(dst)
	imgW, imgH := 0, 0
	if img != nil {
		imgW, imgH = img.Width, img.Height
	}
	var c color.RGBA
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := (y*w + x) * bytesPerPixel
			imgX := int(math.Round(float64(x)*zoom)) + viewX
			imgY := int(math.Round(float64(y)*zoom)) + viewY
			if imgX < 0 || imgX >= imgW || imgY < 0 || imgY >= imgH {
				// Background image.
				c = bgPattern(x, y)
			} else {
				c = rgbaAt(img, imgX, imgY)
			}
			dst.Pix[pos] = c.R
			dst.Pix[pos+1] = c.G
			dst.Pix[pos+2] = c.B
			dst.Pix[pos+3] = c.A
		}
	}
}

func rgbaAt(img *raster.Raster, x, y int) color.RGBA {
	offset := img.Offset(x, y)
	if img.Channels == 1 {
		v := img.Pix[offset]
		return color.RGBA{R: v, G: v, B: v, A: 0xFF}
	}
	return color.RGBA{R: img.Pix[offset], G: img.Pix[offset+1], B: img.Pix[offset+2], A: 0xFF}
}

var (
	bgDark, bgLight = color.RGBA{R: 58, G: 58, B: 58, A: 0xFF}, color.RGBA{R: 84, G: 84, B: 84, A: 0xFF}
)

func bgPattern(x, y int) color.RGBA {
	const boxSize = 25
	if (x/boxSize)%2 == (y/boxSize)%2 {
		return bgDark
	}
	return bgLight
}

// imagePos returns the image position for the given position in the canvas.
func (vp *ViewPort) imagePos(pos fyne.Position) (x, y int) {
	size := vp.Size()
	ratioX := pos.X / size.Width
	ratioY := pos.Y / size.Height
	x = int(ratioX*float32(vp.viewW) + float32(vp.viewX))
	y = int(ratioY*float32(vp.viewH) + float32(vp.viewY))
	return
}

// ===============================================================
// Implementation of dragging view window on ViewPort
// ===============================================================

// Dragged implements fyne.Draggable
func (vp *ViewPort) Dragged(ev *fyne.DragEvent) {
	if vp.dragEvents == nil {
		glog.V(2).Info("Dragged(): start new drag")
		// Create a channel to send dragEvents and start goroutine to consume them sequentially.
		vp.dragEvents = make(chan *fyne.DragEvent, dragEventsQueue)
		vp.dragStart = ev.Position
		vp.dragStartViewX = vp.viewX
		vp.dragStartViewY = vp.viewY
		go vp.consumeDragEvents(vp.dragEvents)
		return // No need to process first event.
	}
	vp.dragEvents <- ev
}

func (vp *ViewPort) consumeDragEvents(dragEvents chan *fyne.DragEvent) {
	var prevDragPos fyne.Position
	for done := false; !done; {
		// Wait for something to happen.
		ev := <-dragEvents
		if ev == nil {
			// All done.
			break
		}

		// Read all events in channel, until it blocks or is closed.
		consumed := 0
	drainDragEvents:
		for {
			select {
			case newEvent := <-dragEvents:
				if newEvent == nil {
					// Channel closed, but we still need to process last event.
					done = true
					break drainDragEvents
				}
				consumed++
				ev = newEvent
			default:
				break drainDragEvents // Emptied the channel.
			}
		}
		if ev.Position != prevDragPos {
			prevDragPos = ev.Position
			glog.V(3).Infof("consumeDragEvents(pos=%+v, consumed=%d)", ev.Position, consumed)
			vp.dragViewDelta(ev.Position.Subtract(vp.dragStart))
		}
	}
	glog.V(2).Info("consumeDragEvents(): done")
}

func (vp *ViewPort) dragViewDelta(delta fyne.Position) {
	size := vp.Size()

	ratioX := delta.X / size.Width
	ratioY := delta.Y / size.Height

	vp.viewX = vp.dragStartViewX - int(ratioX*float32(vp.viewW)+0.5)
	vp.viewY = vp.dragStartViewY - int(ratioY*float32(vp.viewH)+0.5)
	vp.Refresh()
	vp.syncLinked()
}

// DragEnd implements fyne.Draggable
func (vp *ViewPort) DragEnd() {
	glog.V(2).Infof("DragEnd(), dragEvents=%v", vp.dragEvents != nil)
	if vp.dragEvents != nil {
		close(vp.dragEvents)
		vp.dragEvents = nil
	}
}

// ===============================================================
// Pixel inspection on ViewPort
// ===============================================================

// MouseIn implements desktop.Hoverable.
func (vp *ViewPort) MouseIn(ev *desktop.MouseEvent) {
	vp.mouseMoveEvents <- ev.Position
}

// MouseMoved implements desktop.Hoverable.
func (vp *ViewPort) MouseMoved(ev *desktop.MouseEvent) {
	// Send event to channel, it will only be acted on in
	// vp.processMouseMoveEvent.
	vp.mouseMoveEvents <- ev.Position
}

// MouseOut implements desktop.Hoverable.
func (vp *ViewPort) MouseOut() {}

// processMouseMoveEvent shows the values of the pixel under the mouse.
func (vp *ViewPort) processMouseMoveEvent(pos fyne.Position) {
	img := vp.Image()
	if img == nil || vp.ed == nil {
		return
	}
	x, y := vp.imagePos(pos)
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return
	}
	offset := img.Offset(x, y)
	vp.ed.setStatus(vp.ed.tr(locale.StatusPixel, x, y, img.Pix[offset:offset+img.Channels]))
}

// consumeMouseMoveEvents runs on a separate GoRoutine and
// drains the mouse movement events before acting on the
// last of them.
func (vp *ViewPort) consumeMouseMoveEvents() {
	// vp.mouseMoveEvents is only closed if the view port is discarded.
	for {
		// Wait for something to happen.
		ev, ok := <-vp.mouseMoveEvents
		if !ok {
			return
		}

		// Read all events in channel, until it blocks or is closed.
	mouseMoveEventsLoop:
		for {
			select {
			case newEvent, ok := <-vp.mouseMoveEvents:
				if !ok {
					return
				}
				ev = newEvent
			default:
				break mouseMoveEventsLoop
			}
		}
		vp.processMouseMoveEvent(ev)
	}
}
