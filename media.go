package main

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// Supported File Types
// =============================================================================

// imageExts contains the image extensions whose embedded EXIF block is
// repaired from the sidecar.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// videoExt is the only video extension handled. Videos get their file
// times repaired but their contents are never touched.
const videoExt = ".mp4"

// sidecarSuffix is appended to the full media filename (extension included)
// to locate its sidecar, e.g. IMG_0001.jpg -> IMG_0001.jpg.json.
const sidecarSuffix = ".json"

// mediaKind tells the repairer which branch a file takes.
type mediaKind int

const (
	kindOther mediaKind = iota
	kindImage
	kindVideo
)

func (k mediaKind) String() string {
	switch k {
	case kindImage:
		return "image"
	case kindVideo:
		return "video"
	default:
		return "other"
	}
}

// kindOf classifies a path by its extension, case-insensitively.
func kindOf(path string) mediaKind {
	ext := extOf(path)
	switch {
	case imageExts[ext]:
		return kindImage
	case ext == videoExt:
		return kindVideo
	default:
		return kindOther
	}
}

// extOf returns the lowercased extension of path, dot included.
func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// isMediaFile returns true if the file name is on the allow-list
// (image extensions plus the video extension).
func isMediaFile(name string) bool {
	return kindOf(name) != kindOther
}

// sidecarPathFor returns where the sidecar of mediaPath would live.
func sidecarPathFor(mediaPath string) string {
	return mediaPath + sidecarSuffix
}
