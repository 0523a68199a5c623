// Package editor implements the image editing window: the original image and
// the transformed result side by side, with the controls for the affine
// transform and the convolution filter.
//
// The editor only collects parameters and displays results: all the image
// processing is done by the filters package.
package editor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"path"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/clipboard"
	"github.com/janpfeifer/imagelab/filters"
	"github.com/janpfeifer/imagelab/imageio"
	"github.com/janpfeifer/imagelab/locale"
	"github.com/janpfeifer/imagelab/raster"
	"golang.org/x/text/message"
)

// Themes accepted in Config.Theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config of the user interface. None of it reaches the image processing.
type Config struct {
	// Language name or BCP 47 tag, see locale.Match.
	Language string
	// Theme is ThemeLight or ThemeDark.
	Theme string
	// Channels of the image being edited: 1 for grayscale, 3 for color.
	Channels int
	// Display to capture with "Capture screen".
	Display int
}

// Editor is the application object.
type Editor struct {
	// Fyne: Application and Window
	App fyne.App
	Win fyne.Window // Main window.

	Config Config

	// settings are only accessed from the UI callbacks.
	settings filters.Settings

	mu sync.Mutex

	// source is the image as loaded, original its conversion to
	// Config.Channels.
	source, original, result *raster.Raster

	applyEvents chan applyRequest

	// printer and status are replaced on the UI goroutine and read from the
	// apply and mouse goroutines.
	uiMu    sync.Mutex
	printer *message.Printer
	status  *widget.Label

	// UI elements
	originalView, resultView *ViewPort
	kernelEntry              *widget.Entry
}

// applyRequest holds a copy of everything needed to generate a result.
type applyRequest struct {
	original *raster.Raster
	settings filters.Settings
}

const applyEventsQueue = 1000

// New creates the editor for the given original image and initial settings.
func New(cfg Config, original *raster.Raster, settings filters.Settings) *Editor {
	if cfg.Channels == 0 {
		cfg.Channels = 3
	}
	ed := &Editor{
		App:         app.NewWithID("ImageLab"),
		settings:    settings,
		applyEvents: make(chan applyRequest, applyEventsQueue),
	}

	// Values not given are taken from the previous session.
	prefs := ed.App.Preferences()
	if cfg.Language == "" {
		cfg.Language = prefs.String(LanguagePreference)
	}
	if cfg.Theme == "" {
		cfg.Theme = prefs.String(ThemePreference)
	}
	if ed.settings.Fill == nil {
		ed.settings.Fill = UnpackColor(prefs.IntWithFallback(FillColorPreference, PackColor(color.White)))
	}
	ed.Config = cfg
	ed.setPrinter(cfg.Language)
	ed.setSource(original)
	return ed
}

// Run opens the editor window and blocks until it is closed.
func Run(cfg Config, original *raster.Raster, settings filters.Settings) {
	ed := New(cfg, original, settings)
	ed.applyTheme()
	ed.BuildEditWindow()
	go ed.consumeApplyEvents()
	ed.requestApply()
	ed.Win.ShowAndRun()
	close(ed.applyEvents)
	ed.originalView.Close()
	ed.resultView.Close()
}

// tr translates the user interface label key.
func (ed *Editor) tr(key string, args ...interface{}) string {
	ed.uiMu.Lock()
	printer := ed.printer
	ed.uiMu.Unlock()
	return printer.Sprintf(key, args...)
}

func (ed *Editor) setPrinter(language string) {
	printer := locale.NewPrinter(locale.Match(language))
	ed.uiMu.Lock()
	ed.printer = printer
	ed.uiMu.Unlock()
}

func (ed *Editor) applyTheme() {
	if ed.Config.Theme == ThemeDark {
		ed.App.Settings().SetTheme(theme.DarkTheme())
	} else {
		ed.App.Settings().SetTheme(theme.LightTheme())
	}
}

// SetLanguage switches the user interface language and rebuilds the window.
func (ed *Editor) SetLanguage(name string) {
	glog.V(2).Infof("SetLanguage(%q)", name)
	ed.Config.Language = name
	ed.setPrinter(name)
	ed.buildContent()
}

// Original returns the image being edited.
func (ed *Editor) Original() *raster.Raster {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.original
}

// Result returns the last generated result, or nil if none was generated yet.
func (ed *Editor) Result() *raster.Raster {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.result
}

// sourceChannels is used when loading images, so color is kept when
// switching back from grayscale.
const sourceChannels = 3

// setSource stores the loaded image and returns its conversion to
// Config.Channels, the new original.
func (ed *Editor) setSource(r *raster.Raster) *raster.Raster {
	original := r
	if r != nil {
		var err error
		original, err = r.ToChannels(ed.Config.Channels)
		if err != nil {
			glog.Errorf("Failed to convert %s to %d channels: %v", r, ed.Config.Channels, err)
			original = r
		}
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.source = r
	ed.original = original
	ed.result = nil
	return original
}

// SetOriginal replaces the image being edited, and regenerates the result.
func (ed *Editor) SetOriginal(r *raster.Raster) {
	glog.V(2).Infof("SetOriginal(%s)", r)
	original := ed.setSource(r)
	if ed.originalView != nil {
		ed.originalView.SetImage(original)
		ed.resultView.SetImage(nil)
		ed.originalView.FitImage()
	}
	// Translation ranges depend on the image size.
	ed.buildContent()
	ed.requestApply()
}

// SetGrayscale switches the image being edited between grayscale and color.
func (ed *Editor) SetGrayscale(gray bool) {
	ed.Config.Channels = sourceChannels
	if gray {
		ed.Config.Channels = 1
	}
	ed.mu.Lock()
	source := ed.source
	ed.mu.Unlock()
	ed.SetOriginal(source)
}

// requestApply schedules the generation of a new result with the current settings.
func (ed *Editor) requestApply() {
	ed.applyEvents <- applyRequest{original: ed.Original(), settings: ed.settings}
}

// consumeApplyEvents generates the results sequentially. Sliders generate
// lots of events, so it drops all but the latest pending request.
func (ed *Editor) consumeApplyEvents() {
	for {
		req, ok := <-ed.applyEvents
		if !ok {
			break
		}

		// Read all events in channel, until it blocks or is closed.
		consumed := 0
		done := false
	drainApplyEvents:
		for {
			select {
			case newReq, ok := <-ed.applyEvents:
				if !ok {
					// Channel closed, but we still need to process last request.
					done = true
					break drainApplyEvents
				}
				consumed++
				req = newReq
			default:
				break drainApplyEvents // Emptied the channel.
			}
		}
		glog.V(2).Infof("consumeApplyEvents(dropped=%d)", consumed)
		ed.applyFilters(req)
		if done {
			break
		}
	}
	glog.V(2).Info("consumeApplyEvents(): done")
}

// applyFilters generates the result for the request and displays it.
func (ed *Editor) applyFilters(req applyRequest) {
	if req.original == nil {
		return
	}
	result, err := req.settings.Apply(req.original)
	var fallback *filters.FallbackError
	switch {
	case errors.As(err, &fallback):
		glog.Warningf("Custom kernel %q: %v", req.settings.CustomKernel, err)
		ed.setStatus(ed.tr(locale.StatusFallback, fallback.Err))
	case err != nil:
		glog.Errorf("Failed to apply %+v: %v", req.settings, err)
		ed.setStatus(ed.tr(locale.StatusError, err))
		return
	default:
		ed.setStatus(ed.tr(locale.StatusReady, result.Width, result.Height))
	}

	ed.mu.Lock()
	if ed.original != req.original {
		// Image changed in the meantime, result is stale.
		ed.mu.Unlock()
		return
	}
	ed.result = result
	ed.mu.Unlock()

	if ed.resultView != nil {
		ed.resultView.SetImage(result)
	}
}

func (ed *Editor) setStatus(text string) {
	ed.uiMu.Lock()
	status := ed.status
	ed.uiMu.Unlock()
	if status != nil {
		status.SetText(text)
	}
}

// newStatusBar replaces the status bar label, used when the window content
// is rebuilt.
func (ed *Editor) newStatusBar(text string) *widget.Label {
	status := widget.NewLabel(text)
	ed.uiMu.Lock()
	ed.status = status
	ed.uiMu.Unlock()
	return status
}

// DefaultPathPreference stores the last directory used to open or save images.
const DefaultPathPreference = "DefaultPath"

// imageExtensions accepted by the open dialog.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

func (ed *Editor) defaultLocation() fyne.ListableURI {
	defaultPath := ed.App.Preferences().String(DefaultPathPreference)
	if defaultPath == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(defaultPath))
	if err != nil {
		glog.Warningf("Cannot create a ListableURI for %q", defaultPath)
		return nil
	}
	return lister
}

func (ed *Editor) resizeDialog(d dialog.Dialog) {
	size := ed.Win.Canvas().Size()
	size.Width *= 0.90
	size.Height *= 0.90
	d.Resize(size)
}

// OpenImage opens a file dialog to select a new image to edit.
func (ed *Editor) OpenImage() {
	glog.V(2).Info("Editor.OpenImage")
	fileOpen := dialog.NewFileOpen(
		func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				glog.Errorf("Failed to open image: %s", err)
				dialog.ShowError(err, ed.Win)
				return
			}
			if reader == nil {
				return // Cancelled.
			}
			defer func() { _ = reader.Close() }()
			ed.App.Preferences().SetString(DefaultPathPreference, path.Dir(reader.URI().Path()))

			data, err := io.ReadAll(reader)
			if err != nil {
				glog.Errorf("Failed to read %q: %s", reader.URI(), err)
				dialog.ShowError(err, ed.Win)
				return
			}
			r, format, err := imageio.Decode(data, sourceChannels)
			if err != nil {
				glog.Errorf("Failed to decode %q: %s", reader.URI(), err)
				dialog.ShowError(err, ed.Win)
				return
			}
			glog.Infof("Opened %s image %q: %s", format, reader.URI(), r)
			ed.SetOriginal(r)
		}, ed.Win)
	fileOpen.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	if location := ed.defaultLocation(); location != nil {
		fileOpen.SetLocation(location)
	}
	ed.resizeDialog(fileOpen)
	fileOpen.Show()
}

// UseDemoPattern replaces the image being edited with the demo pattern.
func (ed *Editor) UseDemoPattern() {
	r, err := imageio.DemoPattern(imageio.DemoPatternSize, imageio.DemoPatternSize, sourceChannels)
	if err != nil {
		dialog.ShowError(err, ed.Win)
		return
	}
	ed.SetOriginal(r)
}

// CaptureScreen replaces the image being edited with a screenshot. The window
// is hidden while capturing.
func (ed *Editor) CaptureScreen() {
	ed.Win.Hide()
	r, err := imageio.CaptureScreen(ed.Config.Display, sourceChannels)
	ed.Win.Show()
	if err != nil {
		glog.Errorf("Failed to capture screen: %s", err)
		dialog.ShowError(err, ed.Win)
		return
	}
	ed.SetOriginal(r)
}

// SaveImage opens a file save dialog box to save the result.
func (ed *Editor) SaveImage() {
	result := ed.Result()
	if result == nil {
		return
	}
	ed.saveDialog("result.png", result.Image())
}

// SaveComparison opens a file save dialog box to save original and result
// side by side.
func (ed *Editor) SaveComparison() {
	original, result := ed.Original(), ed.Result()
	if original == nil || result == nil {
		return
	}
	img, err := imageio.Compare(original, result, [2]string{ed.tr(locale.Original), ed.tr(locale.Result)})
	if err != nil {
		glog.Errorf("Failed to create comparison: %s", err)
		dialog.ShowError(err, ed.Win)
		return
	}
	ed.saveDialog("comparison.png", img)
}

func (ed *Editor) saveDialog(fileName string, img image.Image) {
	glog.V(2).Infof("Editor.saveDialog(%q)", fileName)
	var fileSave *dialog.FileDialog
	fileSave = dialog.NewFileSave(
		func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				glog.Errorf("Failed to save image: %s", err)
				ed.setStatus(ed.tr(locale.StatusError, err))
				return
			}
			if writer == nil {
				return // Cancelled.
			}
			glog.V(2).Infof("saveDialog(): URI=%s", writer.URI())
			defer func() { _ = writer.Close() }()

			// Always default to previous path used:
			ed.App.Preferences().SetString(DefaultPathPreference, path.Dir(writer.URI().Path()))

			var contentBuffer bytes.Buffer
			if err = imageio.Encode(&contentBuffer, img, imageio.FormatFromPath(writer.URI().Path())); err == nil {
				_, err = writer.Write(contentBuffer.Bytes())
			}
			if err != nil {
				glog.Errorf("Failed to save image to %q: %s", writer.URI(), err)
				ed.setStatus(ed.tr(locale.StatusError, err))
				return
			}
			ed.setStatus(ed.tr(locale.StatusSaved, writer.URI().String()))
		}, ed.Win)
	fileSave.SetFileName(fileName)
	if location := ed.defaultLocation(); location != nil {
		fileSave.SetLocation(location)
	}
	ed.resizeDialog(fileSave)
	fileSave.Show()
}

// CopyImageToClipboard copies the result to the clipboard.
func (ed *Editor) CopyImageToClipboard() {
	glog.V(2).Info("Editor.CopyImageToClipboard")
	result := ed.Result()
	if result == nil {
		return
	}
	if err := clipboard.CopyImage(result.Image()); err != nil {
		glog.Errorf("Failed to copy to clipboard: %s", err)
		ed.setStatus(ed.tr(locale.StatusError, err))
		return
	}
	ed.setStatus(ed.tr(locale.StatusCopied))
}

// CopySettingsToClipboard copies the command-line flags that reproduce the
// current settings in batch mode.
func (ed *Editor) CopySettingsToClipboard() {
	text := joinFlags(ed.settings.Flags())
	glog.V(2).Infof("Editor.CopySettingsToClipboard: %s", text)
	if err := clipboard.CopyText(text); err != nil {
		glog.Errorf("Failed to copy to clipboard: %s", err)
		ed.setStatus(ed.tr(locale.StatusError, err))
		return
	}
	ed.setStatus(ed.tr(locale.StatusFlags, text))
}

// joinFlags joins the flags in one line that can be pasted in a shell,
// single-quoting the ones with spaces or special characters.
func joinFlags(flags []string) string {
	quoted := make([]string, len(flags))
	for ii, flag := range flags {
		if strings.ContainsAny(flag, " ;'\"$`&|<>()*?#~") {
			flag = "'" + strings.ReplaceAll(flag, "'", `'\''`) + "'"
		}
		quoted[ii] = flag
	}
	return strings.Join(quoted, " ")
}
