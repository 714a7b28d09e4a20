// Photo Restamp - Restore capture dates of an exported photo archive
//
// This tool copies the photos and videos of an export archive (for example
// a Google Photos Takeout) into an output tree and repairs their dates from
// the sidecar JSON files that travel alongside them. Exports lose the
// original capture date on the way out; the sidecars keep it.
//
// Features:
//   - Mirrors the first-level group folders (usually one per year)
//   - Writes DateTimeOriginal / DateTimeDigitized into JPEG and PNG EXIF
//   - Sets file access and modification times for photos and MP4 videos
//   - Best effort: a file that cannot be repaired is still copied
//   - Optional manifest CSV describing every copied file
//   - Folder picker when no folders are given
//
// Usage:
//
//	photo-restamp                                 # Pick folders interactively
//	photo-restamp ~/Takeout/Photos ~/Restored     # Input and output as arguments
//	photo-restamp -i in -o out --manifest run.csv # Also write a manifest
//	photo-restamp -c restamp.yaml                 # Read options from a config file
//
// Expected directory structure:
//
//	Takeout/Photos/
//	├── Photos from 2019/
//	│   ├── IMG_0001.jpg
//	│   └── IMG_0001.jpg.json   <- sidecar with photoTakenTime
//	└── Photos from 2020/
//	    └── VID_0002.mp4
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// errPickerCancelled is returned by browseFolder when the user closes the
// picker without choosing.
var errPickerCancelled = errors.New("folder selection cancelled")

// pickFolder returns the folder chosen in the picker, or "" if the user
// cancelled or no picker could be shown.
func pickFolder(logger zerolog.Logger, title string) string {
	dir, err := browseFolder(title)
	if err != nil {
		if !errors.Is(err, errPickerCancelled) {
			logger.Warn().Err(err).Str("title", title).Msg("folder picker unavailable")
		}
		return ""
	}
	return dir
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// realMain runs the command and returns the process exit code.
func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args, stderr)
	if errors.Is(err, errHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger, closer, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	if cfg.Input == "" {
		cfg.Input = pickFolder(logger, "Select Input Folder")
	}
	if cfg.Output == "" {
		cfg.Output = pickFolder(logger, "Select Output Folder")
	}
	if cfg.Input == "" || cfg.Output == "" {
		fmt.Fprintln(stdout, "Input or output folder not selected. Exiting...")
		return 0
	}
	if err := cfg.validateRoots(); err != nil {
		logger.Error().Err(err).Msg("invalid folders")
		return 2
	}
	if err := checkInputDir(cfg.Input); err != nil {
		logger.Error().Err(err).Str("input", cfg.Input).Msg("input folder not usable")
		return 1
	}

	// Print banner
	fmt.Fprintln(stdout, strings.Repeat("=", 50))
	fmt.Fprintln(stdout, "Photo Restamp")
	fmt.Fprintln(stdout, strings.Repeat("=", 50))
	fmt.Fprintf(stdout, "Input:  %s\n", cfg.Input)
	fmt.Fprintf(stdout, "Output: %s\n", cfg.Output)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Starting processing...")

	var observers multiObserver
	if f, ok := stderr.(*os.File); ok && !cfg.NoProgress && isTTY(f) {
		observers = append(observers, newProgressObserver(stderr))
	}
	recorder := &manifestRecorder{}
	if cfg.Manifest != "" {
		observers = append(observers, recorder)
	}

	walker := &Walker{Logger: logger}
	if len(observers) > 0 {
		walker.Observer = observers
	}
	total := walker.Run(cfg.Input, cfg.Output)

	fmt.Fprintf(stdout, "Processing complete! Total files processed: %d\n", total)

	code := 0
	if cfg.Manifest != "" {
		rows := manifestRows(cfg.Input, cfg.Output, recorder.entries)
		if err := writeManifest(cfg.Manifest, rows); err != nil {
			logger.Error().Err(err).Str("manifest", cfg.Manifest).Msg("write manifest")
			code = 1
		} else {
			logger.Info().Str("manifest", cfg.Manifest).Int("rows", len(rows)).Msg("manifest written")
		}
	}

	if cfg.Pause {
		fmt.Fprint(stdout, "\nPress Enter to exit...")
		_, _ = bufio.NewReader(stdin).ReadString('\n')
	}
	return code
}
