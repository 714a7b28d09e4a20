package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// =============================================================================
// Archive Walking
// =============================================================================

// Observer receives progress events from a Walker. The walker itself never
// writes to the terminal.
type Observer interface {
	// OnGroupStart is called before the files of a group folder are handled.
	OnGroupStart(group string, total int)
	// OnFileDone is called after each allow-listed file, repaired or not.
	OnFileDone(group, name string, hasSidecar bool)
	// OnGroupDone is called once every file of the group has been handled.
	OnGroupDone(group string)
}

// Walker mirrors the group folders of an export archive into an output
// tree, repairing files that have a sidecar.
type Walker struct {
	Logger   zerolog.Logger
	Observer Observer
}

// Run copies every allow-listed file found directly inside the first-level
// subfolders of inputRoot into the same-named subfolder of outputRoot and
// returns how many such files it saw. Files deeper than one level, or lying
// directly under inputRoot, are not visited.
//
// The count includes files whose repair failed; individual failures are
// never reported.
func (w *Walker) Run(inputRoot, outputRoot string) int {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		w.Logger.Debug().Err(err).Str("output", outputRoot).Msg("create output root")
	}

	groups, err := os.ReadDir(inputRoot)
	if err != nil {
		w.Logger.Debug().Err(err).Str("input", inputRoot).Msg("list input root")
		return 0
	}

	total := 0
	for _, g := range groups {
		if !isDir(inputRoot, g) {
			continue
		}
		total += w.walkGroup(filepath.Join(inputRoot, g.Name()), filepath.Join(outputRoot, g.Name()))
	}
	return total
}

// walkGroup handles one group folder and returns its allow-listed file count.
func (w *Walker) walkGroup(groupDir, outDir string) int {
	group := filepath.Base(groupDir)
	logger := w.Logger.With().Str("group", group).Logger()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Debug().Err(err).Str("output", outDir).Msg("create group folder")
	}

	files := listMediaFiles(logger, groupDir)
	if w.Observer != nil {
		w.Observer.OnGroupStart(group, len(files))
	}

	for _, name := range files {
		src := filepath.Join(groupDir, name)
		sidecarPath := sidecarPathFor(src)

		hasSidecar := fileExists(sidecarPath)
		if hasSidecar {
			repairFile(logger, src, sidecarPath, outDir)
		} else if _, err := copyInto(src, outDir); err != nil {
			logger.Debug().Err(err).Str("file", src).Msg("copy")
		}

		if w.Observer != nil {
			w.Observer.OnFileDone(group, name, hasSidecar)
		}
	}

	if w.Observer != nil {
		w.Observer.OnGroupDone(group)
	}
	return len(files)
}

// listMediaFiles returns the names of allow-listed files directly inside dir,
// in directory listing order.
func listMediaFiles(logger zerolog.Logger, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("list group folder")
		return nil
	}

	var names []string
	for _, e := range entries {
		if !isMediaFile(e.Name()) || isDir(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

// isDir reports whether the entry e of dir is a directory, following
// symbolic links.
func isDir(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// multiObserver fans events out to several observers.
type multiObserver []Observer

func (m multiObserver) OnGroupStart(group string, total int) {
	for _, o := range m {
		o.OnGroupStart(group, total)
	}
}

func (m multiObserver) OnFileDone(group, name string, hasSidecar bool) {
	for _, o := range m {
		o.OnFileDone(group, name, hasSidecar)
	}
}

func (m multiObserver) OnGroupDone(group string) {
	for _, o := range m {
		o.OnGroupDone(group)
	}
}
