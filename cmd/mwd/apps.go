package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
)

// NewAppCommand creates the app command definition
func NewAppCommand() *cli.Command {
	return &cli.Command{
		Name:  "app",
		Usage: "Manage the Mendix apps that receive packages",
		Description: "An app's path is the directory the packages are copied into, usually the " +
			"widgets directory of a Mendix project. 'mwd build' deploys to every selected app.",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register an app",
				ArgsUsage: "[KEY]",
				Description: "Registers an app and selects it. Without KEY a key is derived from --name. " +
					"The path is stored as an absolute path.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (default: key)"},
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Package directory", Required: true},
				},
				Action: appAddCommand,
			},
			{
				Name:          "remove",
				Aliases:       []string{"rm"},
				Usage:         "Unregister an app",
				ArgsUsage:     "KEY",
				ShellComplete: completeAppKeys,
				Action:        appRemoveCommand,
			},
			{
				Name:          "update",
				Usage:         "Change an app's name or path",
				ArgsUsage:     "KEY",
				ShellComplete: completeAppKeys,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New display name"},
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "New package directory"},
				},
				Action: appUpdateCommand,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List registered apps",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only display app keys"},
				},
				Action: appListCommand,
			},
			{
				Name:          "move",
				Aliases:       []string{"mv"},
				Usage:         "Change an app's place in the deploy order",
				ArgsUsage:     "KEY",
				ShellComplete: completeAppKeys,
				Flags:         moveFlags(),
				Action:        appMoveCommand,
			},
			{
				Name:          "select",
				Usage:         "Select apps as deployment targets",
				ArgsUsage:     "KEY...",
				ShellComplete: completeAppKeys,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Select every app"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return appSelectCommand(cmd, true)
				},
			},
			{
				Name:          "deselect",
				Usage:         "Stop deploying to apps",
				ArgsUsage:     "KEY...",
				ShellComplete: completeAppKeys,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Deselect every app"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return appSelectCommand(cmd, false)
				},
			},
		},
	}
}

func appAddCommand(_ context.Context, cmd *cli.Command) error {
	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	app, err := addApp(settings, cmd.Args().First(), cmd.String("name"), cmd.String("path"))
	if err != nil {
		return err
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "App '%s' added (path: %s)\n", app.Key, app.Path)
	return nil
}

func addApp(settings *config.Settings, key, name, path string) (config.App, error) {
	if key == "" {
		if name == "" {
			return config.App{}, errors.AppKeyRequired("mwd app add [KEY] --name <name> --path <dir>")
		}
		key = settings.GenerateAppKey(name)
	}
	if name == "" {
		name = key
	}

	dir, err := absPath(path)
	if err != nil {
		return config.App{}, errors.DirectoryAccessFailed("resolve", path, err)
	}

	app := config.App{Key: key, Name: name, Path: dir}
	if err := settings.AddApp(app); err != nil {
		if stderrors.Is(err, config.ErrAppExists) {
			return config.App{}, errors.AppAlreadyExists(key)
		}
		return config.App{}, err
	}
	return app, nil
}

func appRemoveCommand(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.AppKeyRequired("mwd app remove <key>")
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := settings.RemoveApp(key); err != nil {
		return appLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "App '%s' removed\n", key)
	return nil
}

func appUpdateCommand(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.AppKeyRequired("mwd app update <key> [--name <name>] [--path <dir>]")
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dir, err := absPath(cmd.String("path"))
	if err != nil {
		return errors.DirectoryAccessFailed("resolve", cmd.String("path"), err)
	}

	if err := settings.UpdateApp(key, cmd.String("name"), dir); err != nil {
		return appLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "App '%s' updated\n", key)
	return nil
}

func appMoveCommand(_ context.Context, cmd *cli.Command) error {
	const usage = "mwd app move <key> --up | --down | --to <position>"

	key := cmd.Args().First()
	if key == "" {
		return errors.AppKeyRequired(usage)
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	index := settings.AppIndex(key)
	if index < 0 {
		return errors.AppNotFound(key, settings.AppKeys())
	}

	delta, err := moveDelta(cmd, index, usage)
	if err != nil {
		return err
	}

	if err := settings.MoveApp(key, delta); err != nil {
		return appLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "App '%s' is now %d of %d in deploy order\n",
		key, settings.AppIndex(key)+1, len(settings.Apps))
	return nil
}

func appSelectCommand(cmd *cli.Command, selected bool) error {
	keys := cmd.Args().Slice()
	all := cmd.Bool("all")
	if len(keys) == 0 && !all {
		verb := "select"
		if !selected {
			verb = "deselect"
		}
		return errors.AppKeyRequired(fmt.Sprintf("mwd app %s [--all] <key>...", verb))
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if all {
		keys = settings.AppKeys()
	}

	if selected {
		err = settings.SelectApps(keys...)
	} else {
		err = settings.DeselectApps(keys...)
	}
	if err != nil {
		for _, key := range keys {
			if _, ok := settings.FindApp(key); !ok {
				return errors.AppNotFound(key, settings.AppKeys())
			}
		}
		return err
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "%d app(s) selected\n", len(settings.TargetApps()))
	return nil
}

func appLookupError(err error, key string, settings *config.Settings) error {
	if stderrors.Is(err, config.ErrAppNotFound) {
		return errors.AppNotFound(key, settings.AppKeys())
	}
	return err
}

func appListCommand(_ context.Context, cmd *cli.Command) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	w := commandWriter(cmd)
	if cmd.Bool("quiet") {
		for _, key := range settings.AppKeys() {
			fmt.Fprintln(w, key)
		}
		return nil
	}

	displayApps(w, settings, getTerminalWidth())
	return nil
}

// displayApps prints the app table. Paths that are not usable directories
// are annotated the same way 'mwd paths' does.
func displayApps(w io.Writer, settings *config.Settings, width int) {
	if len(settings.Apps) == 0 {
		fmt.Fprintln(w, "No apps registered. Run 'mwd app add <key> --path <dir>' to add one.")
		return
	}

	keyWidth, nameWidth := len("KEY"), len("NAME")
	for _, app := range settings.Apps {
		keyWidth = max(keyWidth, utf8.RuneCountInString(app.Key))
		nameWidth = max(nameWidth, utf8.RuneCountInString(app.Name))
	}

	pathWidth := width - selectedColumnLen - keyWidth - nameWidth - 2*columnGap
	pathWidth = max(pathWidth, minPathWidth)

	fmt.Fprintf(w, "%-*s%-*s  %-*s  %s\n", selectedColumnLen, "", keyWidth, "KEY", nameWidth, "NAME", "PATH")
	for _, app := range settings.Apps {
		marker := ""
		if settings.SelectedApps[app.Key] {
			marker = selectedMarker
		}
		fmt.Fprintf(w, "%-*s%-*s  %-*s  %s\n",
			selectedColumnLen, marker,
			keyWidth, app.Key,
			nameWidth, app.Name,
			truncatePath(describeDir(app.Dir()), pathWidth))
	}
}
