// Package testutil provides helpers shared across tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// DefaultOutputDir mirrors the build output layout of a Mendix widget project.
var DefaultOutputDir = filepath.Join("dist", "1.0.0")

// WidgetDir creates an empty widget source directory named name under base.
func WidgetDir(t *testing.T, base, name string) string {
	t.Helper()

	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create widget dir %s: %v", dir, err)
	}
	return dir
}

// WriteArtifact writes a packaged widget into the build output directory of
// widgetDir and returns its path.
func WriteArtifact(t *testing.T, widgetDir, fileName, content string) string {
	t.Helper()

	outDir := filepath.Join(widgetDir, DefaultOutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("create output dir %s: %v", outDir, err)
	}

	path := filepath.Join(outDir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact %s: %v", path, err)
	}
	return path
}

// WriteSettings writes raw YAML to a settings file in a fresh temp directory
// and returns the file path.
func WriteSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}
