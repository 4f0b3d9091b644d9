package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

// appResult captures what one CLI run wrote
type appResult struct {
	stdout string
	stderr string
	err    error
}

// runApp runs the mwd app with args against the settings file at configPath.
func runApp(t *testing.T, configPath string, args ...string) appResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"mwd", "--config", configPath}, args...)
	err := app.Run(context.Background(), argv)

	return appResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// newSettingsPath returns a settings path in a fresh directory; the file does
// not exist yet.
func newSettingsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "mwd", "settings.yml")
}
