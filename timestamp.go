package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// File Timestamps
// =============================================================================

// chtimes is swapped out in tests.
var chtimes = os.Chtimes

// captureTime turns Unix seconds into the UTC instant they denote.
func captureTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// setFileTimestamp sets the access and modification time of path to the
// capture timestamp ts. A nil ts does nothing. Failures are logged at debug
// level and otherwise dropped: a file whose times cannot be changed keeps
// whatever times the copy gave it.
func setFileTimestamp(logger zerolog.Logger, path string, ts *int64) {
	if ts == nil {
		return
	}
	t := captureTime(*ts)
	if err := chtimes(path, t, t); err != nil {
		logger.Debug().Err(err).Str("path", path).Int64("timestamp", *ts).Msg("set file times")
	}
}
