package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/abema/go-mp4"
	"github.com/djherbis/times"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/udhos/equalfile"
)

// =============================================================================
// Manifest Management
// =============================================================================

// manifestHeaders are the columns of the run manifest CSV.
var manifestHeaders = []string{
	"group",               // Group folder name
	"filename",            // Media file name
	"sidecar",             // Whether a sidecar was found
	"capture_timestamp",   // photoTakenTime from the sidecar (RFC 3339, UTC)
	"exif_date_original",  // DateTimeOriginal read back from the copy
	"embedded_video_date", // mvhd creation time of an MP4 copy
	"file_modified",       // Modification time of the copy
	"file_accessed",       // Access time of the copy
	"identical_to_source", // Whether the copy still matches the source byte for byte
}

// errNoCreationTime is returned for MP4s whose movie header is missing or
// carries no creation time.
var errNoCreationTime = errors.New("mp4: no creation time")

// mp4Epoch is the origin of MP4 movie header timestamps.
var mp4Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// ManifestEntry identifies one allow-listed file seen during a run.
type ManifestEntry struct {
	Group      string
	Name       string
	HasSidecar bool
}

// manifestRecorder is an Observer that remembers every file the walker saw.
type manifestRecorder struct {
	entries []ManifestEntry
}

func (r *manifestRecorder) OnGroupStart(string, int) {}

func (r *manifestRecorder) OnFileDone(group, name string, hasSidecar bool) {
	r.entries = append(r.entries, ManifestEntry{Group: group, Name: name, HasSidecar: hasSidecar})
}

func (r *manifestRecorder) OnGroupDone(string) {}

// manifestRows inspects the output tree and returns one CSV row per entry,
// sorted by group then filename. It only reads; nothing is repaired here.
func manifestRows(inputRoot, outputRoot string, entries []ManifestEntry) [][]string {
	cmp := equalfile.New(nil, equalfile.Options{})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		src := filepath.Join(inputRoot, e.Group, e.Name)
		dest := filepath.Join(outputRoot, e.Group, e.Name)

		row := []string{
			e.Group,
			e.Name,
			strconv.FormatBool(e.HasSidecar),
			"", "", "", "", "", "",
		}

		if e.HasSidecar {
			if sc, err := readSidecar(sidecarPathFor(src)); err == nil {
				if ts, err := sc.captureTimestamp(); err == nil && ts != nil {
					row[3] = captureTime(*ts).Format(time.RFC3339)
				}
			}
		}

		// Stat before reading the copy: reads may bump its access time.
		ts, err := times.Stat(dest)
		if err != nil {
			rows = append(rows, row)
			continue
		}
		row[6] = ts.ModTime().UTC().Format(time.RFC3339)
		row[7] = ts.AccessTime().UTC().Format(time.RFC3339)

		switch kindOf(e.Name) {
		case kindImage:
			row[4] = exifDateOriginal(dest)
		case kindVideo:
			if t, err := mp4CreationTime(dest); err == nil {
				row[5] = t.Format(time.RFC3339)
			}
		}

		if equal, err := cmp.CompareFile(src, dest); err == nil {
			row[8] = strconv.FormatBool(equal)
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][1] < rows[j][1]
	})
	return rows
}

// writeManifest writes the header and rows to path, replacing any previous
// manifest.
func writeManifest(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(manifestHeaders); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return replaceFile(path, buf.Bytes())
}

// exifDateOriginal returns the DateTimeOriginal tag of the image at path,
// or "" when it has none.
func exifDateOriginal(path string) string {
	if extOf(path) == ".png" {
		tags, err := readExifTags(path)
		if err != nil {
			return ""
		}
		return tags["DateTimeOriginal"]
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return ""
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}

// mp4CreationTime reads the creation time from the movie header of an MP4.
func mp4CreationTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxWithPayload(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return time.Time{}, err
	}
	if len(boxes) != 1 {
		return time.Time{}, errNoCreationTime
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return time.Time{}, errNoCreationTime
	}

	secs := uint64(mvhd.CreationTimeV0)
	if mvhd.GetVersion() == 1 {
		secs = mvhd.CreationTimeV1
	}
	if secs == 0 {
		return time.Time{}, errNoCreationTime
	}
	return mp4Epoch.Add(time.Duration(secs) * time.Second), nil
}
