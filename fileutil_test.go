package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	writeFile(t, src, "new contents")
	writeFile(t, dst, "old contents that are longer")
	require.NoError(t, os.Chmod(src, 0o600))

	require.NoError(t, copyFile(src, dst))

	assert.Equal(t, "new contents", string(readFile(t, dst)))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCopyInto(t *testing.T) {
	src := filepath.Join(t.TempDir(), "IMG_1.jpg")
	out := t.TempDir()
	writeFile(t, src, "jpeg")

	dst, err := copyInto(src, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "IMG_1.jpg"), dst)
	assert.Equal(t, "jpeg", string(readFile(t, dst)))

	_, err = copyInto(filepath.Join(t.TempDir(), "missing.jpg"), out)
	assert.Error(t, err)
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	writeFile(t, path, "before")
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, replaceFile(path, []byte("after")))

	assert.Equal(t, "after", string(readFile(t, path)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assertNoTempFiles(t, dir)
}

func TestReplaceFile_RenameFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	writeFile(t, path, "before")

	orig := renameFunc
	renameFunc = func(string, string) error { return errors.New("rename failed") }
	t.Cleanup(func() { renameFunc = orig })

	err := replaceFile(path, []byte("after"))
	require.Error(t, err)

	assert.Equal(t, "before", string(readFile(t, path)))
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}
