package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
)

// Variable to allow mocking in tests
var defaultSettingsPath = config.DefaultPath

func settingsPath(cmd *cli.Command) (string, error) {
	if p := cmd.String("config"); p != "" {
		return p, nil
	}
	return defaultSettingsPath()
}

// loadSettings returns the settings and the file they belong to. A missing
// file yields defaults.
func loadSettings(cmd *cli.Command) (*config.Settings, string, error) {
	path, err := settingsPath(cmd)
	if err != nil {
		return nil, "", errors.DirectoryAccessFailed("locate config", "", err)
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, path, errors.ConfigLoadFailed(path, err)
	}

	return settings, path, nil
}

func saveSettings(path string, settings *config.Settings) error {
	if err := config.Save(path, settings); err != nil {
		return errors.ConfigSaveFailed(path, err)
	}
	return nil
}

func commandWriter(cmd *cli.Command) io.Writer {
	writer := cmd.Root().Writer
	if writer == nil {
		return os.Stdout
	}
	return writer
}

func commandErrWriter(cmd *cli.Command) io.Writer {
	writer := cmd.Root().ErrWriter
	if writer == nil {
		return os.Stderr
	}
	return writer
}
