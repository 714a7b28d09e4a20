package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// =============================================================================
// Sidecar Records
// =============================================================================

// sidecar holds the fields consumed from a `<media>.json` description file.
// Everything else in the export record is ignored.
//
// photoTakenTime is kept raw so that a record whose capture time has an
// unexpected shape still parses; the problem only surfaces when the
// timestamp is asked for, after the copy has been made.
type sidecar struct {
	Title          string          `json:"title"`
	PhotoTakenTime json.RawMessage `json:"photoTakenTime"`
}

// takenTime is the shape of photoTakenTime in Takeout exports.
type takenTime struct {
	Timestamp epochSeconds `json:"timestamp"`
	Formatted string       `json:"formatted"`
}

// epochSeconds accepts a JSON string or a bare JSON number. Exports write
// the epoch seconds as a string, hand-edited records often use a number.
type epochSeconds struct {
	value  string
	number bool
}

func (e *epochSeconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*e = epochSeconds{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = epochSeconds{value: s}
		return nil
	}
	*e = epochSeconds{value: string(b), number: true}
	return nil
}

// Capture times must fit a four-digit EXIF year.
var (
	minCaptureUnix = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxCaptureUnix = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// seconds parses the value. Strings must hold an integer; numbers are
// truncated toward zero.
func (e epochSeconds) seconds() (*int64, error) {
	value := strings.TrimSpace(e.value)
	if value == "" {
		return nil, nil
	}

	var ts int64
	if e.number {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("photoTakenTime.timestamp %s: %w", value, err)
		}
		if f <= float64(minCaptureUnix-1) || f >= float64(maxCaptureUnix+1) {
			return nil, fmt.Errorf("photoTakenTime.timestamp %s: out of range", value)
		}
		ts = int64(math.Trunc(f))
	} else {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("photoTakenTime.timestamp %q: %w", value, err)
		}
		ts = n
	}

	if ts < minCaptureUnix || ts > maxCaptureUnix {
		return nil, fmt.Errorf("photoTakenTime.timestamp %s: out of range", value)
	}
	return &ts, nil
}

// readSidecar reads and decodes the sidecar at path.
func readSidecar(path string) (*sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", path, err)
	}
	return &sc, nil
}

// captureTimestamp returns the photoTakenTime timestamp in Unix seconds.
// A nil result with a nil error means the record carries no capture time.
// A value that is present but not a number, or outside years 1 to 9999,
// is an error.
func (sc *sidecar) captureTimestamp() (*int64, error) {
	raw := bytes.TrimSpace(sc.PhotoTakenTime)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var tt takenTime
	if err := json.Unmarshal(raw, &tt); err != nil {
		return nil, fmt.Errorf("photoTakenTime: %w", err)
	}

	return tt.Timestamp.seconds()
}
