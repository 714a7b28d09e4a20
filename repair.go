package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// Metadata Repair
// =============================================================================

// repairFile copies src into destDir and repairs the copy from the sidecar
// at sidecarPath: EXIF capture dates for images, file times for images and
// videos.
//
// It never reports failure. Whatever goes wrong is logged at debug level and
// dropped so that one bad file cannot stop the batch; the copy, once made,
// is kept even if the repair that follows it fails.
func repairFile(logger zerolog.Logger, src, sidecarPath, destDir string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug().Str("file", src).Interface("panic", r).Msg("repair aborted")
		}
	}()

	if err := restamp(logger, src, sidecarPath, destDir); err != nil {
		logger.Debug().Err(err).Str("file", src).Msg("repair aborted")
	}
}

// restamp does the work of repairFile and returns the first error that
// aborts it.
func restamp(logger zerolog.Logger, src, sidecarPath, destDir string) error {
	sc, err := readSidecar(sidecarPath)
	if err != nil {
		// An unreadable sidecar is treated like a missing one.
		if _, cerr := copyInto(src, destDir); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}

	dest, err := copyInto(src, destDir)
	if err != nil {
		return err
	}

	switch kindOf(src) {
	case kindImage:
		ts, err := sc.captureTimestamp()
		if err != nil {
			return err
		}
		var captured *time.Time
		if ts != nil {
			t := captureTime(*ts)
			captured = &t
		}
		if err := writeCaptureDate(dest, captured); err != nil {
			if !errors.Is(err, errExifEncode) {
				return fmt.Errorf("exif %s: %w", dest, err)
			}
			logger.Debug().Err(err).Str("path", dest).Msg("exif left unmodified")
		}
		setFileTimestamp(logger, dest, ts)
	case kindVideo:
		ts, err := sc.captureTimestamp()
		if err != nil {
			return err
		}
		setFileTimestamp(logger, dest, ts)
	}
	return nil
}
