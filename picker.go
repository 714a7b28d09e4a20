//go:build !nogui

package main

import (
	"errors"

	"github.com/sqweek/dialog"
)

// =============================================================================
// Folder Picker
// =============================================================================

// browseFolder asks the user for a directory with the native folder
// picker. Swapped out in tests.
var browseFolder = func(title string) (string, error) {
	dir, err := dialog.Directory().Title(title).Browse()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", errPickerCancelled
	}
	return dir, err
}
