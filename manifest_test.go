package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRows(t *testing.T) {
	in, out := buildArchive(t)
	require.NoError(t, os.MkdirAll(filepath.Join(in, "2019"), 0o755))
	writeMP4(t, filepath.Join(in, "2019", "v.mp4"), time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, filepath.Join(in, "2019", "v.mp4.json"), sidecarJSON("1577836800"))

	rec := &manifestRecorder{}
	total := (&Walker{Logger: zerolog.Nop(), Observer: rec}).Run(in, out)
	require.Equal(t, 3, total)

	rows := manifestRows(in, out, rec.entries)
	require.Len(t, rows, 3)

	video := rows[0]
	assert.Equal(t, []string{"2019", "v.mp4", "true"}, video[:3])
	assert.Equal(t, "2020-01-01T00:00:00Z", video[3])
	assert.Equal(t, "", video[4])
	assert.Equal(t, "2019-06-01T00:00:00Z", video[5])
	assert.Equal(t, "2020-01-01T00:00:00Z", video[6])
	assert.Equal(t, "true", video[8])

	photo := rows[1]
	assert.Equal(t, []string{"2020", "a.jpg", "true"}, photo[:3])
	assert.Equal(t, "2020-01-01T00:00:00Z", photo[3])
	assert.Equal(t, "2020:01:01 00:00:00", photo[4])
	assert.Equal(t, "2020-01-01T00:00:00Z", photo[6])
	assert.Equal(t, "false", photo[8])

	plain := rows[2]
	assert.Equal(t, []string{"2020", "b.png", "false", ""}, plain[:4])
	assert.Equal(t, "", plain[4])
	assert.Equal(t, "true", plain[8])
}

func TestManifestRows_MissingCopy(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	rows := manifestRows(in, out, []ManifestEntry{{Group: "2020", Name: "gone.jpg"}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2020", "gone.jpg", "false", "", "", "", "", "", ""}, rows[0])
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.csv")
	rows := [][]string{{"2020", "a, b.jpg", "false", "", "", "", "", "", "true"}}

	require.NoError(t, writeManifest(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, manifestHeaders, records[0])
	assert.Equal(t, rows[0], records[1])
}

func TestMP4CreationTime(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "v.mp4")
	want := time.Date(2015, time.March, 4, 5, 6, 7, 0, time.UTC)
	writeMP4(t, path, want)
	got, err := mp4CreationTime(path)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "got %v", got)

	bare := filepath.Join(dir, "bare.mp4")
	writeFile(t, bare, "")
	_, err = mp4CreationTime(bare)
	assert.ErrorIs(t, err, errNoCreationTime)
}
