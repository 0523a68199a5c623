//go:build darwin
// +build darwin

package editor

// Darwin version of the shortcut descriptions in resources_default.go
const (
	SaveShortcutDesc = "⌘+S"
	CopyShortcutDesc = "⌘+C"
	OpenShortcutDesc = "⌘+O"
)
