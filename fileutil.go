package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// =============================================================================
// File Operations
// =============================================================================

// renameFunc is swapped out in tests to simulate a failed replace.
var renameFunc = os.Rename

// copyFile copies src to dst byte for byte, overwriting dst if it exists.
// The permission bits of src are carried over.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}

// copyInto copies src into dir under its own base name and returns the
// destination path.
func copyInto(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	return dst, copyFile(src, dst)
}

// replaceFile swaps the contents of path for data through a temporary file
// in the same directory. If anything fails the original file is left as it
// was and the temporary file is removed.
func replaceFile(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return renameFunc(tmpName, path)
}
