package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
)

// NewPathsCommand creates the paths command definition
func NewPathsCommand() *cli.Command {
	return &cli.Command{
		Name:  "paths",
		Usage: "Show or set the base and destination paths",
		Description: "Without flags, prints the configured paths. With --base or --dest, stores the " +
			"given directories (made absolute) in the settings file.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base",
				Usage: "Directory holding the widget sources",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Mendix project widgets directory",
			},
		},
		Action: pathsCommand,
	}
}

func pathsCommand(_ context.Context, cmd *cli.Command) error {
	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	w := commandWriter(cmd)
	base, dest := cmd.String("base"), cmd.String("dest")
	if base == "" && dest == "" {
		displayPaths(w, settings)
		return nil
	}

	if base != "" {
		if settings.BasePath, err = absPath(base); err != nil {
			return errors.DirectoryAccessFailed("resolve", base, err)
		}
	}
	if dest != "" {
		if settings.DestinationPath, err = absPath(dest); err != nil {
			return errors.DirectoryAccessFailed("resolve", dest, err)
		}
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	displayPaths(w, settings)
	return nil
}

func displayPaths(w io.Writer, settings *config.Settings) {
	fmt.Fprintf(w, "base:        %s\n", describeDir(settings.BasePath))
	fmt.Fprintf(w, "destination: %s\n", describeDir(settings.DestinationPath))
}

func describeDir(path string) string {
	if path == "" {
		return "(not set)"
	}
	info, err := os.Stat(path)
	if err != nil {
		return path + " (missing)"
	}
	if !info.IsDir() {
		return path + " (not a directory)"
	}
	return path
}
