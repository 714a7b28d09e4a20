//go:build nogui

package main

import "errors"

// =============================================================================
// Folder Picker
// =============================================================================

// browseFolder is unavailable in builds without a GUI toolkit; folders
// must come from flags, arguments, the environment or the config file.
var browseFolder = func(string) (string, error) {
	return "", errors.New("built without folder picker (nogui)")
}
