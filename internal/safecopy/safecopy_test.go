package safecopy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIncrementFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":      "photo-1.jpg",
		"photo-1.jpg":    "photo-2.jpg",
		"photo-9.jpg":    "photo-10.jpg",
		"my-file.jpg":    "my-file-1.jpg",
		"archive.tar.gz": "archive.tar-1.gz",
		"README":         "README-1",
		".bashrc":        ".bashrc-1",
	}
	for input, want := range cases {
		require.Equal(t, want, IncrementFilename(input), input)
	}
}

func TestCopyIntoEmptyDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, src, "pixels")
	dir := filepath.Join(t.TempDir(), "attachments")

	name, err := Copy(src, dir)
	require.NoError(t, err)
	require.Equal(t, "photo.jpg", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, "pixels", string(data))
}

func TestCopyDifferentContentGetsNextName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photo.jpg"), "original")

	src := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, src, "different")

	name, err := Copy(src, dir)
	require.NoError(t, err)
	require.Equal(t, "photo-1.jpg", name)

	original, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, "original", string(original), "existing file must not be overwritten")
}

func TestCopyIdenticalContentReusesName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photo.jpg"), "pixels")

	src := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, src, "pixels")

	name, err := Copy(src, dir)
	require.NoError(t, err)
	require.Equal(t, "photo.jpg", name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCopyFindsIdenticalFurtherInSequence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photo.jpg"), "first")
	writeFile(t, filepath.Join(dir, "photo-1.jpg"), "second")

	src := filepath.Join(t.TempDir(), "photo.jpg")
	writeFile(t, src, "second")

	name, err := Copy(src, dir)
	require.NoError(t, err)
	require.Equal(t, "photo-1.jpg", name)

	writeFile(t, src, "third")
	name, err = Copy(src, dir)
	require.NoError(t, err)
	require.Equal(t, "photo-2.jpg", name)
}

func TestCopyMissingSource(t *testing.T) {
	_, err := Copy(filepath.Join(t.TempDir(), "gone.jpg"), t.TempDir())
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := ExpandHome("~/Library/Messages/a.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "Library/Messages/a.jpg"), path)

	path, err = ExpandHome("/abs/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "/abs/a.jpg", path)
}
