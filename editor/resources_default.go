//go:build !darwin
// +build !darwin

package editor

// Descriptions of the shortcuts shown in the menu entries, they differ
// per platform.
const (
	SaveShortcutDesc = "ctrl+s"
	CopyShortcutDesc = "ctrl+c"
	OpenShortcutDesc = "ctrl+o"
)
