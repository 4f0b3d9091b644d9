package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWidgetDir(t *testing.T) {
	base := t.TempDir()

	dir := WidgetDir(t, base, "badge")

	if dir != filepath.Join(base, "badge") {
		t.Fatalf("WidgetDir = %s, want %s", dir, filepath.Join(base, "badge"))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("widget dir missing: %v", err)
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := WidgetDir(t, t.TempDir(), "badge")

	path := WriteArtifact(t, dir, "Badge.mpk", "zip")

	want := filepath.Join(dir, "dist", "1.0.0", "Badge.mpk")
	if path != want {
		t.Fatalf("WriteArtifact = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "zip" {
		t.Fatalf("artifact content = %q, want %q", data, "zip")
	}
}

func TestWriteSettings(t *testing.T) {
	path := WriteSettings(t, "version: \"1.0\"\n")

	if filepath.Base(path) != "settings.yml" {
		t.Fatalf("unexpected settings file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if string(data) != "version: \"1.0\"\n" {
		t.Fatalf("settings content = %q", data)
	}
}
