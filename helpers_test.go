package main

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abema/go-mp4"
	"github.com/djherbis/times"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/require"
)

// newImage returns a small gradient so encoders produce non-trivial data.
func newImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, newImage(), nil))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, newImage()))
}

// writeMP4 writes a bare moov/mvhd structure, enough for header parsing.
func writeMP4(t *testing.T, path string, created time.Time) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := mp4.NewWriter(f)
	_, err = w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMoov()})
	require.NoError(t, err)
	_, err = w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMvhd()})
	require.NoError(t, err)
	_, err = mp4.Marshal(w, &mp4.Mvhd{
		CreationTimeV0: uint32(created.Sub(mp4Epoch) / time.Second),
		Timescale:      1000,
		NextTrackID:    1,
	}, mp4.Context{})
	require.NoError(t, err)
	_, err = w.EndBox()
	require.NoError(t, err)
	_, err = w.EndBox()
	require.NoError(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

// jpegDates reads both capture-date tags back with goexif.
func jpegDates(t *testing.T, path string) (original, digitized string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	x, err := exif.Decode(f)
	require.NoError(t, err)

	tag, err := x.Get(exif.DateTimeOriginal)
	require.NoError(t, err)
	original, err = tag.StringVal()
	require.NoError(t, err)

	tag, err = x.Get(exif.DateTimeDigitized)
	require.NoError(t, err)
	digitized, err = tag.StringVal()
	require.NoError(t, err)
	return original, digitized
}

// fileTimes returns access and modification time of path. Call it before
// anything reads the file: reads may bump the access time.
func fileTimes(t *testing.T, path string) (atime, mtime time.Time) {
	t.Helper()
	ts, err := times.Stat(path)
	require.NoError(t, err)
	return ts.AccessTime(), ts.ModTime()
}

// sidecarJSON returns a sidecar body with photoTakenTime.timestamp set to ts.
func sidecarJSON(ts string) string {
	return `{"title":"x","photoTakenTime":{"timestamp":"` + ts + `","formatted":"whatever"}}`
}
