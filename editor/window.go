package editor

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/glog"
	"github.com/janpfeifer/imagelab/filters"
	"github.com/janpfeifer/imagelab/locale"
)

// Preferences kept across sessions.
const (
	LanguagePreference  = "Language"
	ThemePreference     = "Theme"
	FillColorPreference = "FillColor"
)

// Minimum size of each of the image views.
const imageViewSize = 320

// BuildEditWindow creates the main window, its contents and shortcuts.
func (ed *Editor) BuildEditWindow() {
	ed.Win = ed.App.NewWindow(ed.tr(locale.AppTitle))
	ed.Win.SetIcon(theme.FyneLogo())
	ed.newImageViews()
	ed.buildContent()
	ed.Win.Resize(fyne.NewSize(1024.0, 768.0))

	// Register shortcuts.
	ed.Win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyQ, Modifier: desktop.ControlModifier},
		func(shortcut fyne.Shortcut) {
			glog.Infof("Quit requested by shortcut %s", shortcut.ShortcutName())
			ed.App.Quit()
		})
	ed.Win.Canvas().AddShortcut(&fyne.ShortcutCopy{},
		func(shortcut fyne.Shortcut) {
			printShortcut(shortcut)
			ed.CopyImageToClipboard()
		})
	ed.Win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: desktop.ControlModifier},
		func(shortcut fyne.Shortcut) {
			printShortcut(shortcut)
			ed.SaveImage()
		})
	ed.Win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: desktop.ControlModifier},
		func(shortcut fyne.Shortcut) {
			printShortcut(shortcut)
			ed.OpenImage()
		})
}

func printShortcut(shortcut fyne.Shortcut) {
	glog.Infof("Shortcut: %s", shortcut.ShortcutName())
}

// buildContent (re-)creates the menu and all the widgets of the window. It's
// called again whenever the language or the size of the image changes.
func (ed *Editor) buildContent() {
	if ed.Win == nil {
		return
	}
	ed.Win.SetTitle(ed.tr(locale.AppTitle))

	// Build menu.
	menuFile := fyne.NewMenu(ed.tr(locale.MenuFile),
		fyne.NewMenuItem(fmt.Sprintf("%s (%s)", ed.tr(locale.MenuOpen), OpenShortcutDesc), func() { ed.OpenImage() }),
		fyne.NewMenuItem(ed.tr(locale.MenuDemo), func() { ed.UseDemoPattern() }),
		fyne.NewMenuItem(ed.tr(locale.MenuCapture), func() { ed.CaptureScreen() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(fmt.Sprintf("%s (%s)", ed.tr(locale.MenuSave), SaveShortcutDesc), func() { ed.SaveImage() }),
		fyne.NewMenuItem(ed.tr(locale.MenuSaveCmp), func() { ed.SaveComparison() }),
	) // Quit is added automatically.
	menuShare := fyne.NewMenu(ed.tr(locale.MenuShare),
		fyne.NewMenuItem(fmt.Sprintf("%s (%s)", ed.tr(locale.MenuCopy), CopyShortcutDesc), func() { ed.CopyImageToClipboard() }),
		fyne.NewMenuItem(ed.tr(locale.MenuCopyFlags), func() { ed.CopySettingsToClipboard() }),
	)
	ed.Win.SetMainMenu(fyne.NewMainMenu(menuFile, menuShare))

	// Images side by side, zoom and panning are shared.
	original := ed.Original()
	images := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel(ed.tr(locale.Original)), nil, nil, nil, ed.originalView),
		container.NewBorder(widget.NewLabel(ed.tr(locale.Result)), nil, nil, nil, ed.resultView),
	)

	// Status bar.
	var statusText string
	if original != nil {
		statusText = ed.tr(locale.StatusReady, original.Width, original.Height)
	}
	status := ed.newStatusBar(statusText)

	// Stitch all together.
	split := container.NewHSplit(images, container.NewVScroll(ed.buildControls()))
	split.Offset = 0.7
	topLevel := container.NewBorder(nil, status, nil, nil, container.NewMax(split))
	ed.Win.SetContent(topLevel)
}

func (ed *Editor) newImageViews() {
	ed.originalView = NewViewPort(ed, ed.Original())
	ed.resultView = NewViewPort(ed, ed.Result())
	for _, vp := range []*ViewPort{ed.originalView, ed.resultView} {
		vp.SetMinSize(fyne.NewSize(imageViewSize, imageViewSize))
	}
	ed.originalView.Link(ed.resultView)
}

// buildControls creates the form with all the settings. Every change updates
// ed.settings and schedules a new result.
func (ed *Editor) buildControls() fyne.CanvasObject {
	s := &ed.settings
	maxTranslateX, maxTranslateY := float64(DefaultTranslateRange), float64(DefaultTranslateRange)
	if original := ed.Original(); original != nil {
		maxTranslateX, maxTranslateY = float64(original.Width), float64(original.Height)
	}

	form := widget.NewForm(
		widget.NewFormItem(ed.tr(locale.Rotation), ed.newSlider(-180, 180, 1, &s.Params.RotateDegrees)),
		widget.NewFormItem(ed.tr(locale.ScaleX), ed.newSlider(0.1, 3, 0.05, &s.Params.ScaleX)),
		widget.NewFormItem(ed.tr(locale.ScaleY), ed.newSlider(0.1, 3, 0.05, &s.Params.ScaleY)),
		widget.NewFormItem(ed.tr(locale.TranslateX), ed.newSlider(-maxTranslateX, maxTranslateX, 1, &s.Params.TranslateX)),
		widget.NewFormItem(ed.tr(locale.TranslateY), ed.newSlider(-maxTranslateY, maxTranslateY, 1, &s.Params.TranslateY)),
		widget.NewFormItem(ed.tr(locale.ShearX), ed.newSlider(-1, 1, 0.05, &s.Params.ShearX)),
		widget.NewFormItem(ed.tr(locale.ShearY), ed.newSlider(-1, 1, 0.05, &s.Params.ShearY)),
		widget.NewFormItem(ed.tr(locale.Flip), ed.flipSelect()),
		widget.NewFormItem(ed.tr(locale.Interpolation), ed.interpolationSelect()),
		widget.NewFormItem(ed.tr(locale.FillColor), ed.fillColorButton()),
	)

	// Kernel: the custom kernel entry is only enabled if selected.
	ed.kernelEntry = widget.NewMultiLineEntry()
	ed.kernelEntry.SetText(s.CustomKernel)
	ed.kernelEntry.OnChanged = func(text string) {
		glog.V(2).Infof("Custom kernel changed to %q", text)
		s.CustomKernel = text
		if s.Filter == filters.CustomFilter {
			ed.requestApply()
		}
	}
	if s.Filter != filters.CustomFilter {
		ed.kernelEntry.Disable()
	}
	filterSelect := widget.NewSelect(filters.FilterOptions(), nil)
	filterSelect.SetSelected(s.Filter)
	filterSelect.OnChanged = func(name string) {
		glog.V(2).Infof("Filter changed to %q", name)
		s.Filter = name
		if name == filters.CustomFilter {
			ed.kernelEntry.Enable()
		} else {
			ed.kernelEntry.Disable()
		}
		ed.requestApply()
	}
	normalize := widget.NewCheck(ed.tr(locale.Normalize), nil)
	normalize.SetChecked(s.Normalize)
	normalize.OnChanged = func(checked bool) {
		s.Normalize = checked
		ed.requestApply()
	}
	gray := widget.NewCheck(ed.tr(locale.Grayscale), nil)
	gray.SetChecked(ed.Config.Channels == 1)
	gray.OnChanged = func(checked bool) {
		glog.V(2).Infof("Grayscale changed to %v", checked)
		ed.SetGrayscale(checked)
	}
	form.Append("", gray)
	form.Append(ed.tr(locale.Filter), filterSelect)
	form.Append(ed.tr(locale.CustomKernel), ed.kernelEntry)
	form.Append("", normalize)

	// User interface preferences.
	form.Append(ed.tr(locale.Language), ed.languageSelect())
	form.Append(ed.tr(locale.Theme), ed.themeSelect())

	reset := widget.NewButtonWithIcon(ed.tr(locale.Reset), theme.ViewRefreshIcon(), func() {
		glog.V(2).Info("Reset settings")
		fill := s.Fill
		*s = filters.DefaultSettings()
		s.Fill = fill
		ed.buildContent()
		ed.requestApply()
	})
	return container.NewVBox(form, reset)
}

// DefaultTranslateRange is the range of the translation sliders when there is
// no image.
const DefaultTranslateRange = 256

// newSlider creates a slider bound to value, with a label showing the current
// value.
func (ed *Editor) newSlider(min, max, step float64, value *float64) fyne.CanvasObject {
	slider := widget.NewSlider(min, max)
	slider.Step = step
	slider.Value = *value
	valueLabel := widget.NewLabel(formatSliderValue(*value))
	slider.OnChanged = func(v float64) {
		if v == *value {
			return
		}
		*value = v
		valueLabel.SetText(formatSliderValue(v))
		ed.requestApply()
	}
	return container.NewBorder(nil, nil, nil, valueLabel, slider)
}

func formatSliderValue(v float64) string {
	return fmt.Sprintf("%7.2f", v)
}

func (ed *Editor) flipSelect() *widget.Select {
	s := &ed.settings
	options := []string{ed.tr(locale.FlipNone)}
	for _, axis := range []filters.Axis{filters.Horizontal, filters.Vertical, filters.Both} {
		options = append(options, axis.String())
	}
	flip := widget.NewSelect(options, nil)
	if s.Flip {
		flip.SetSelected(s.FlipAxis.String())
	} else {
		flip.SetSelected(options[0])
	}
	flip.OnChanged = func(name string) {
		axis, err := filters.ParseAxis(name)
		s.Flip = err == nil
		s.FlipAxis = axis
		ed.requestApply()
	}
	return flip
}

func (ed *Editor) interpolationSelect() *widget.Select {
	s := &ed.settings
	interp := widget.NewSelect(filters.InterpolationNames(), nil)
	interp.SetSelected(s.Interpolation.String())
	interp.OnChanged = func(name string) {
		i, err := filters.ParseInterpolation(name)
		if err != nil {
			glog.Errorf("Interpolation: %v", err)
			return
		}
		s.Interpolation = i
		ed.requestApply()
	}
	return interp
}

func (ed *Editor) fillColorButton() fyne.CanvasObject {
	s := &ed.settings
	sample := canvas.NewRectangle(fillOrWhite(s.Fill))
	size1d := theme.IconInlineSize()
	size := fyne.NewSize(5*size1d, size1d)
	sample.SetMinSize(size)
	sample.Resize(size)
	button := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		picker := dialog.NewColorPicker(ed.tr(locale.FillColor), "", func(c color.Color) {
			s.Fill = c
			ed.App.Preferences().SetInt(FillColorPreference, PackColor(c))
			sample.FillColor = c
			sample.Refresh()
			ed.requestApply()
		}, ed.Win)
		picker.Advanced = true
		picker.Show()
	})
	return container.NewHBox(button, sample)
}

func (ed *Editor) languageSelect() *widget.Select {
	names := locale.Names()
	current := locale.Match(ed.Config.Language)
	lang := widget.NewSelect(names, nil)
	for ii, tag := range locale.Supported {
		if tag == current {
			lang.SetSelected(names[ii])
		}
	}
	lang.OnChanged = func(name string) {
		ed.App.Preferences().SetString(LanguagePreference, name)
		ed.SetLanguage(name)
	}
	return lang
}

func (ed *Editor) themeSelect() *widget.Select {
	themes := []string{ThemeLight, ThemeDark}
	labels := []string{ed.tr(locale.ThemeLight), ed.tr(locale.ThemeDark)}
	themeSel := widget.NewSelect(labels, nil)
	if ed.Config.Theme == ThemeDark {
		themeSel.SetSelected(labels[1])
	} else {
		themeSel.SetSelected(labels[0])
	}
	themeSel.OnChanged = func(label string) {
		for ii := range labels {
			if labels[ii] == label {
				ed.Config.Theme = themes[ii]
			}
		}
		ed.App.Preferences().SetString(ThemePreference, ed.Config.Theme)
		ed.applyTheme()
	}
	return themeSel
}

// PackColor converts a color to a non-alpha-premultiplied 0xRRGGBBAA value,
// as stored in the preferences.
func PackColor(c color.Color) int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int(n.R)<<24 | int(n.G)<<16 | int(n.B)<<8 | int(n.A)
}

// UnpackColor is the inverse of PackColor.
func UnpackColor(v int) color.Color {
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

func fillOrWhite(c color.Color) color.Color {
	if c == nil {
		return color.White
	}
	return c
}
