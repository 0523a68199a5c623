// Package locale holds the translations of the editor user interface.
//
// Labels are registered in a golang.org/x/text message catalog, keyed by the
// English text, and looked up with a message.Printer.
package locale

import (
	"strings"

	"github.com/golang/glog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported languages. The first one is the fallback.
var (
	English    = language.English
	Indonesian = language.Indonesian
	Chinese    = language.SimplifiedChinese

	Supported = []language.Tag{English, Indonesian, Chinese}
)

// Keys of the user interface labels. They are also the English text.
const (
	AppTitle       = "Matrix & Image Processing"
	Original       = "Original"
	Result         = "Result"
	Rotation       = "Rotation (degrees)"
	ScaleX         = "Scale X"
	ScaleY         = "Scale Y"
	TranslateX     = "Translate X (pixels)"
	TranslateY     = "Translate Y (pixels)"
	ShearX         = "Shear X"
	ShearY         = "Shear Y"
	Flip           = "Flip"
	FlipNone       = "none"
	Interpolation  = "Interpolation"
	Filter         = "Filter"
	CustomKernel   = "Custom kernel (rows separated by ';')"
	Normalize      = "Normalize kernel"
	Reset          = "Reset"
	FillColor      = "Fill color"
	Grayscale      = "Grayscale"
	Language       = "Language"
	Theme          = "Theme"
	ThemeLight     = "light"
	ThemeDark      = "dark"
	MenuFile       = "File"
	MenuOpen       = "Open image"
	MenuDemo       = "Use demo pattern"
	MenuCapture    = "Capture screen"
	MenuSave       = "Save result"
	MenuSaveCmp    = "Save comparison"
	MenuShare      = "Share"
	MenuCopy       = "Copy result"
	MenuCopyFlags  = "Copy settings as command-line flags"
	StatusReady    = "Image size: %dx%d"
	StatusCopied   = "Result copied to clipboard"
	StatusFlags    = "Copied: %s"
	StatusSaved    = "Saved image to %q"
	StatusFallback = "Invalid custom kernel, using sharpen: %v"
	StatusError    = "Error: %v"
	StatusPixel    = "Pixel (%d, %d): %v"
)

var translations = map[string][2]string{
	// key: {Indonesian, Chinese}
	AppTitle:       {"Aplikasi Matrix & Image Processing", "矩阵与图像处理应用"},
	Original:       {"Asli", "原图"},
	Result:         {"Hasil", "结果"},
	Rotation:       {"Rotasi (derajat)", "旋转（度）"},
	ScaleX:         {"Skala X", "缩放 X"},
	ScaleY:         {"Skala Y", "缩放 Y"},
	TranslateX:     {"Translasi X (piksel)", "平移 X（像素）"},
	TranslateY:     {"Translasi Y (piksel)", "平移 Y（像素）"},
	ShearX:         {"Geser X", "剪切 X"},
	ShearY:         {"Geser Y", "剪切 Y"},
	Flip:           {"Cermin", "翻转"},
	FlipNone:       {"tidak ada", "无"},
	Interpolation:  {"Interpolasi", "插值"},
	Filter:         {"Filter", "滤波器"},
	CustomKernel:   {"Kernel kustom (baris dipisah ';')", "自定义卷积核（行用 ';' 分隔）"},
	Normalize:      {"Normalisasi kernel", "归一化卷积核"},
	Reset:          {"Atur ulang", "重置"},
	FillColor:      {"Warna latar", "填充颜色"},
	Grayscale:      {"Skala abu-abu", "灰度"},
	Language:       {"Bahasa", "语言"},
	Theme:          {"Tema", "主题"},
	ThemeLight:     {"terang", "浅色"},
	ThemeDark:      {"gelap", "深色"},
	MenuFile:       {"Berkas", "文件"},
	MenuOpen:       {"Buka gambar", "打开图像"},
	MenuDemo:       {"Gunakan pola demo", "使用演示图案"},
	MenuCapture:    {"Tangkap layar", "截屏"},
	MenuSave:       {"Simpan hasil", "保存结果"},
	MenuSaveCmp:    {"Simpan perbandingan", "保存对比图"},
	MenuShare:      {"Bagikan", "分享"},
	MenuCopy:       {"Salin hasil", "复制结果"},
	MenuCopyFlags:  {"Salin pengaturan sebagai flag baris perintah", "复制设置为命令行参数"},
	StatusReady:    {"Ukuran gambar: %dx%d", "图像大小：%dx%d"},
	StatusCopied:   {"Hasil disalin ke clipboard", "结果已复制到剪贴板"},
	StatusFlags:    {"Disalin: %s", "已复制：%s"},
	StatusSaved:    {"Gambar disimpan ke %q", "图像已保存到 %q"},
	StatusFallback: {"Kernel kustom tidak valid, memakai sharpen: %v", "自定义卷积核无效，改用 sharpen：%v"},
	StatusError:    {"Kesalahan: %v", "错误：%v"},
	StatusPixel:    {"Piksel (%d, %d): %v", "像素 (%d, %d)：%v"},
}

// Catalog with all the translations. English messages are their own keys,
// so they need no entry.
var Catalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for key, msgs := range translations {
		for ii, tag := range []language.Tag{Indonesian, Chinese} {
			if err := b.SetString(tag, key, msgs[ii]); err != nil {
				glog.Errorf("Failed to register %s translation of %q: %v", tag, key, err)
			}
		}
	}
	return b
}

var matcher = language.NewMatcher(Supported)

// Match returns the supported language closest to the given language name or
// BCP 47 tag (e.g. "id", "zh-CN", "English"). Unknown values yield English.
func Match(name string) language.Tag {
	switch name {
	case "English", "english":
		return English
	case "Indonesia", "Indonesian", "indonesian", "Bahasa":
		return Indonesian
	case "中文", "Chinese", "chinese":
		return Chinese
	}
	tag, err := language.Parse(name)
	if err != nil {
		return English
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return English
	}
	return Supported[index]
}

// Names of the supported languages, in their own language, in the order of
// Supported.
func Names() []string {
	return []string{"English", "Indonesia", "中文"}
}

// Labels returns the user interface labels translated to the given
// language, keyed by their English text. Messages that take arguments (the
// status messages) are not included.
func Labels(tag language.Tag) map[string]string {
	p := NewPrinter(tag)
	labels := make(map[string]string, len(translations))
	for key := range translations {
		if strings.Contains(key, "%") {
			continue
		}
		labels[key] = p.Sprintf(key)
	}
	return labels
}

// NewPrinter returns a printer that translates the labels to the given language.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(Catalog))
}
