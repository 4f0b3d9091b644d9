package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
)

// NewInitCommand creates the init command definition
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize settings file",
		Description: "Creates the settings file with the default build script (pnpm run build), " +
			"output directory (dist/1.0.0) and Node.js heap limit.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing settings file",
			},
			&cli.StringFlag{
				Name:  "base",
				Usage: "Directory holding the widget sources",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Mendix project widgets directory",
			},
		},
		Action: initCommand,
	}
}

func initCommand(_ context.Context, cmd *cli.Command) error {
	path, err := settingsPath(cmd)
	if err != nil {
		return errors.DirectoryAccessFailed("locate config", "", err)
	}

	if config.Exists(path) && !cmd.Bool("force") {
		return errors.ConfigAlreadyExists(path)
	}

	settings := config.Default()
	if settings.BasePath, err = absPath(cmd.String("base")); err != nil {
		return errors.DirectoryAccessFailed("resolve", cmd.String("base"), err)
	}
	if settings.DestinationPath, err = absPath(cmd.String("dest")); err != nil {
		return errors.DirectoryAccessFailed("resolve", cmd.String("dest"), err)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	w := commandWriter(cmd)
	fmt.Fprintf(w, "Settings file created: %s\n", path)
	fmt.Fprintln(w, "Register widgets with 'mwd widget add <key>' and build them with 'mwd build'.")
	return nil
}

// absPath makes p absolute; empty stays empty
func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return filepath.Abs(p)
}
