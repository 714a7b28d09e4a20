package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
)

// =============================================================================
// Embedded EXIF Metadata
// =============================================================================

// exifDateLayout is the EXIF date-time format (Go reference time).
const exifDateLayout = "2006:01:02 15:04:05"

// exifIfdPath addresses the Exif sub-IFD that holds the capture-time tags.
const exifIfdPath = "IFD/Exif"

// captureDateTags are the two Exif sub-IFD tags set from the sidecar:
// DateTimeOriginal (0x9003) and DateTimeDigitized (0x9004).
var captureDateTags = []string{"DateTimeOriginal", "DateTimeDigitized"}

// errExifEncode marks failures that happen after the EXIF block was loaded:
// encoding the updated block or writing it back. The file is left with its
// previous metadata when this is returned.
var errExifEncode = errors.New("exif encode")

// exifDocument is an image whose EXIF block can be rebuilt and written back.
// JPEG keeps EXIF in an APP1 segment, PNG in an eXIf chunk.
type exifDocument struct {
	construct func() (*exif.IfdBuilder, error)
	set       func(*exif.IfdBuilder) error
	write     func(io.Writer) error
}

// loadExifDocument parses the container of the image at path.
func loadExifDocument(path string) (*exifDocument, error) {
	switch ext := extOf(path); ext {
	case ".jpg", ".jpeg":
		mc, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parse jpeg: %w", err)
		}
		sl, ok := mc.(*jpegstructure.SegmentList)
		if !ok {
			return nil, fmt.Errorf("parse jpeg: unexpected media context %T", mc)
		}
		return &exifDocument{
			construct: sl.ConstructExifBuilder,
			set:       sl.SetExif,
			write:     sl.Write,
		}, nil
	case ".png":
		mc, err := pngstructure.NewPngMediaParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("parse png: %w", err)
		}
		cs, ok := mc.(*pngstructure.ChunkSlice)
		if !ok {
			return nil, fmt.Errorf("parse png: unexpected media context %T", mc)
		}
		return &exifDocument{
			construct: func() (*exif.IfdBuilder, error) {
				// PNGs rarely carry an eXIf chunk; start from an empty block.
				if _, err := cs.FindExif(); err != nil {
					return newRootBuilder()
				}
				return cs.ConstructExifBuilder()
			},
			set:   cs.SetExif,
			write: cs.WriteTo,
		}, nil
	default:
		return nil, fmt.Errorf("no exif container for %q", ext)
	}
}

// newRootBuilder returns an empty IFD0 builder with the standard mappings.
func newRootBuilder() (*exif.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// writeCaptureDate rewrites the EXIF block of the image at path so that the
// Exif sub-IFD exists and, when captured is non-nil, both capture-date tags
// hold captured formatted in UTC.
//
// Errors loading the block are returned as-is. Errors after that are
// wrapped in errExifEncode and leave the file untouched.
func writeCaptureDate(path string, captured *time.Time) error {
	doc, err := loadExifDocument(path)
	if err != nil {
		return err
	}

	rootIb, err := doc.construct()
	if err != nil {
		return fmt.Errorf("load exif: %w", err)
	}
	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, exifIfdPath)
	if err != nil {
		return fmt.Errorf("load exif: %s: %w", exifIfdPath, err)
	}

	if captured != nil {
		value := captured.UTC().Format(exifDateLayout)
		for _, name := range captureDateTags {
			if err := exifIb.SetStandardWithName(name, value); err != nil {
				return fmt.Errorf("%w: set %s: %v", errExifEncode, name, err)
			}
		}
	}

	if err := doc.set(rootIb); err != nil {
		return fmt.Errorf("%w: %v", errExifEncode, err)
	}
	var buf bytes.Buffer
	if err := doc.write(&buf); err != nil {
		return fmt.Errorf("%w: serialize: %v", errExifEncode, err)
	}
	if err := replaceFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write back: %v", errExifEncode, err)
	}
	return nil
}

// readExifTags returns the ASCII tags of the EXIF block embedded anywhere in
// the file at path, keyed by tag name. It is container-agnostic, so it also
// finds a PNG eXIf chunk.
func readExifTags(path string) (map[string]string, error) {
	raw, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return nil, err
	}
	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, len(entries))
	for _, e := range entries {
		if s, ok := e.Value.(string); ok {
			tags[e.TagName] = s
		}
	}
	return tags, nil
}
