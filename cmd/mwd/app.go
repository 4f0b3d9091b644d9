package main

import (
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "mwd",
		Usage: "Build and deploy Mendix pluggable widgets in one batch",
		Description: "mwd runs the build script of every selected widget, picks up the .mpk package " +
			"each build produced and copies it into the widgets directory of every selected Mendix app.",
		Version:               versionString(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the settings file (default: $MWD_CONFIG or the user config directory)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Diagnostic log level: debug, info, warn or error",
				Sources: cli.EnvVars("MWD_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Diagnostic log format: text or json",
				Sources: cli.EnvVars("MWD_LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			NewInitCommand(),
			NewBuildCommand(),
			NewWidgetCommand(),
			NewAppCommand(),
			NewPathsCommand(),
		},
	}
}
