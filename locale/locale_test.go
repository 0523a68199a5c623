package locale

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	for name, want := range map[string]language.Tag{
		"English":   English,
		"Indonesia": Indonesian,
		"中文":        Chinese,
		"id":        Indonesian,
		"zh-CN":     Chinese,
		"en-GB":     English,
		"fr":        English,
		"":          English,
		"%%%":       English,
	} {
		if got := Match(name); got != want {
			t.Errorf("Match(%q)=%s, want %s", name, got, want)
		}
	}
	for ii, name := range Names() {
		if got := Match(name); got != Supported[ii] {
			t.Errorf("Match(%q)=%s, want %s", name, got, Supported[ii])
		}
	}
}

func TestPrinter(t *testing.T) {
	for _, tc := range []struct {
		tag  language.Tag
		key  string
		args []interface{}
		want string
	}{
		{English, Original, nil, "Original"},
		{Indonesian, Original, nil, "Asli"},
		{Chinese, Result, nil, "结果"},
		{English, StatusReady, []interface{}{640, 480}, "Image size: 640x480"},
		{Indonesian, StatusReady, []interface{}{640, 480}, "Ukuran gambar: 640x480"},
	} {
		p := NewPrinter(tc.tag)
		if got := p.Sprintf(tc.key, tc.args...); got != tc.want {
			t.Errorf("%s: Sprintf(%q)=%q, want %q", tc.tag, tc.key, got, tc.want)
		}
	}
}

func TestAllKeysTranslated(t *testing.T) {
	for key, msgs := range translations {
		for ii, msg := range msgs {
			if msg == "" {
				t.Errorf("key %q has an empty translation #%d", key, ii)
			}
		}
	}
}

func TestLabels(t *testing.T) {
	en := Labels(English)
	if _, found := en[StatusReady]; found {
		t.Errorf("status messages with arguments should not be in the labels")
	}
	if got := en[Reset]; got != Reset {
		t.Errorf("English label for %q is %q", Reset, got)
	}
	zh := Labels(Chinese)
	if got, want := zh[Reset], translations[Reset][1]; got != want {
		t.Errorf("Chinese label for %q is %q, want %q", Reset, got, want)
	}
}
