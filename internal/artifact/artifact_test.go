package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocate(t *testing.T) {
	t.Run("single artifact", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Badge.mpk"), "pkg")
		writeFile(t, filepath.Join(dir, "Badge.mpk.map"), "map")
		writeFile(t, filepath.Join(dir, "README.md"), "readme")

		path, err := Locate(dir, ".mpk")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Badge.mpk"), path)
	})

	t.Run("no artifact", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "widget.js"), "js")

		_, err := Locate(dir, ".mpk")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrArtifactMissing))
		assert.False(t, errors.Is(err, ErrArtifactAmbiguous))
		assert.Contains(t, err.Error(), "No .mpk file found in")
	})

	t.Run("more than one artifact", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.mpk"), "b")
		writeFile(t, filepath.Join(dir, "a.mpk"), "a")

		_, err := Locate(dir, ".mpk")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrArtifactAmbiguous))
		assert.False(t, errors.Is(err, ErrArtifactMissing))
		assert.Contains(t, err.Error(), "expected exactly one")

		var locateErr *LocateError
		require.True(t, errors.As(err, &locateErr))
		assert.Equal(t, []string{filepath.Join(dir, "a.mpk"), filepath.Join(dir, "b.mpk")}, locateErr.Matches)
	})

	t.Run("missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dist", "1.0.0")

		_, err := Locate(dir, ".mpk")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrArtifactMissing))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Contains(t, err.Error(), "Dist path does not exist")
	})

	t.Run("directories and nested files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "old.mpk"), 0o755))
		writeFile(t, filepath.Join(dir, "nested", "inner.mpk"), "inner")
		writeFile(t, filepath.Join(dir, "Widget.mpk"), "pkg")

		path, err := Locate(dir, ".mpk")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Widget.mpk"), path)
	})

	t.Run("symlinked artifact", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("creating symlinks needs extra privileges on Windows")
		}
		dir := t.TempDir()
		target := filepath.Join(t.TempDir(), "cache", "Badge.mpk")
		writeFile(t, target, "pkg")
		require.NoError(t, os.Symlink(target, filepath.Join(dir, "Badge.mpk")))

		path, err := Locate(dir, ".mpk")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Badge.mpk"), path)

		copied, err := Copy(path, t.TempDir())
		require.NoError(t, err)
		content, err := os.ReadFile(copied)
		require.NoError(t, err)
		assert.Equal(t, "pkg", string(content))
	})

	t.Run("dangling and directory symlinks are ignored", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("creating symlinks needs extra privileges on Windows")
		}
		dir := t.TempDir()
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone.mpk"), filepath.Join(dir, "Dangling.mpk")))
		require.NoError(t, os.Symlink(t.TempDir(), filepath.Join(dir, "Folder.mpk")))

		_, err := Locate(dir, ".mpk")

		assert.True(t, errors.Is(err, ErrArtifactMissing))
	})

	t.Run("extension match is exact", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Widget.MPK"), "pkg")

		_, err := Locate(dir, ".mpk")

		assert.True(t, errors.Is(err, ErrArtifactMissing))
	})

	t.Run("empty extension uses default", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Widget.mpk"), "pkg")

		path, err := Locate(dir, "")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Widget.mpk"), path)
	})
}

func TestCopy(t *testing.T) {
	t.Run("copies preserving file name", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "Badge.mpk")
		writeFile(t, src, "package v1")
		destDir := t.TempDir()

		dst, err := Copy(src, destDir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(destDir, "Badge.mpk"), dst)
		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "package v1", string(content))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "Badge.mpk")
		writeFile(t, src, "new")
		destDir := t.TempDir()
		writeFile(t, filepath.Join(destDir, "Badge.mpk"), "a much longer previous package body")

		dst, err := Copy(src, destDir)

		require.NoError(t, err)
		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("repeated copy is idempotent", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "Badge.mpk")
		writeFile(t, src, "same bytes")
		destDir := t.TempDir()

		first, err := Copy(src, destDir)
		require.NoError(t, err)
		second, err := Copy(src, destDir)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		content, err := os.ReadFile(second)
		require.NoError(t, err)
		assert.Equal(t, "same bytes", string(content))
	})

	t.Run("copy onto itself keeps content", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "Badge.mpk")
		writeFile(t, src, "keep me")

		dst, err := Copy(src, dir)

		require.NoError(t, err)
		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(content))
	})

	t.Run("preserves permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not preserved on Windows")
		}
		src := filepath.Join(t.TempDir(), "Badge.mpk")
		writeFile(t, src, "pkg")
		require.NoError(t, os.Chmod(src, 0o640))

		dst, err := Copy(src, t.TempDir())

		require.NoError(t, err)
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := Copy(filepath.Join(t.TempDir(), "nope.mpk"), t.TempDir())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open source file")
	})

	t.Run("missing destination directory", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "Badge.mpk")
		writeFile(t, src, "pkg")

		_, err := Copy(src, filepath.Join(t.TempDir(), "absent"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create destination file")
	})
}
