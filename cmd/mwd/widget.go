package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
)

const (
	selectedMarker    = "*"
	minPathWidth      = 12
	ellipsis          = "..."
	columnGap         = 2
	defaultTermWidth  = 80
	selectedColumnLen = 3
)

// Variable to allow mocking in tests
var getTerminalWidth = func() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

// NewWidgetCommand creates the widget command definition
func NewWidgetCommand() *cli.Command {
	return &cli.Command{
		Name:  "widget",
		Usage: "Manage registered widgets",
		Description: "Widgets are registered by key. The path of a widget is resolved against the base " +
			"path unless it is absolute. Selected widgets are built by 'mwd build' without arguments.",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a widget",
				ArgsUsage: "[KEY]",
				Description: "Registers a widget and selects it. Without KEY a key is derived from --name " +
					"(lower case, dashes for spaces, numbered on collision).",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (default: key)"},
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Source path (default: key)"},
				},
				Action: widgetAddCommand,
			},
			{
				Name:          "remove",
				Aliases:       []string{"rm"},
				Usage:         "Unregister a widget",
				ArgsUsage:     "KEY",
				ShellComplete: completeWidgetKeys,
				Action:        widgetRemoveCommand,
			},
			{
				Name:          "update",
				Usage:         "Change a widget's name or path",
				ArgsUsage:     "KEY",
				ShellComplete: completeWidgetKeys,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New display name"},
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "New source path"},
				},
				Action: widgetUpdateCommand,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List registered widgets",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only display widget keys"},
				},
				Action: widgetListCommand,
			},
			{
				Name:          "move",
				Aliases:       []string{"mv"},
				Usage:         "Change a widget's place in the build order",
				ArgsUsage:     "KEY",
				ShellComplete: completeWidgetKeys,
				Flags:         moveFlags(),
				Action:        widgetMoveCommand,
			},
			{
				Name:          "select",
				Usage:         "Select widgets for 'mwd build'",
				ArgsUsage:     "KEY...",
				ShellComplete: completeWidgetKeys,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Select every widget"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return widgetSelectCommand(cmd, true)
				},
			},
			{
				Name:          "deselect",
				Usage:         "Deselect widgets",
				ArgsUsage:     "KEY...",
				ShellComplete: completeWidgetKeys,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Deselect every widget"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return widgetSelectCommand(cmd, false)
				},
			},
		},
	}
}

func widgetAddCommand(_ context.Context, cmd *cli.Command) error {
	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	widget, err := addWidget(settings, cmd.Args().First(), cmd.String("name"), cmd.String("path"))
	if err != nil {
		return err
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "Widget '%s' added (path: %s)\n", widget.Key, widget.Path)
	return nil
}

func addWidget(settings *config.Settings, key, name, path string) (config.Widget, error) {
	if key == "" {
		if name == "" {
			return config.Widget{}, errors.WidgetKeyRequired("mwd widget add [KEY] --name <name> [--path <path>]")
		}
		key = settings.GenerateKey(name)
	}
	if name == "" {
		name = key
	}

	widget := config.Widget{Key: key, Name: name, Path: path}
	if err := settings.AddWidget(widget); err != nil {
		if stderrors.Is(err, config.ErrWidgetExists) {
			return config.Widget{}, errors.WidgetAlreadyExists(key)
		}
		return config.Widget{}, err
	}

	added, _ := settings.FindWidget(key)
	return *added, nil
}

func widgetRemoveCommand(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.WidgetKeyRequired("mwd widget remove <key>")
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := settings.RemoveWidget(key); err != nil {
		return widgetLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "Widget '%s' removed\n", key)
	return nil
}

func widgetUpdateCommand(_ context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.WidgetKeyRequired("mwd widget update <key> [--name <name>] [--path <path>]")
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := settings.UpdateWidget(key, cmd.String("name"), cmd.String("path")); err != nil {
		return widgetLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "Widget '%s' updated\n", key)
	return nil
}

func widgetMoveCommand(_ context.Context, cmd *cli.Command) error {
	const usage = "mwd widget move <key> --up | --down | --to <position>"

	key := cmd.Args().First()
	if key == "" {
		return errors.WidgetKeyRequired(usage)
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	index := settings.WidgetIndex(key)
	if index < 0 {
		return errors.WidgetNotFound(key, settings.WidgetKeys())
	}

	delta, err := moveDelta(cmd, index, usage)
	if err != nil {
		return err
	}

	if err := settings.MoveWidget(key, delta); err != nil {
		return widgetLookupError(err, key, settings)
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "Widget '%s' is now %d of %d in build order\n",
		key, settings.WidgetIndex(key)+1, len(settings.Widgets))
	return nil
}

func moveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "up", Aliases: []string{"u"}, Usage: "Move one place earlier"},
		&cli.BoolFlag{Name: "down", Aliases: []string{"d"}, Usage: "Move one place later"},
		&cli.IntFlag{Name: "to", Usage: "Move to `POSITION` (1 is first)"},
	}
}

// moveDelta turns --up, --down or --to into an offset from index
func moveDelta(cmd *cli.Command, index int, usage string) (int, error) {
	up, down, to := cmd.Bool("up"), cmd.Bool("down"), cmd.IsSet("to")

	given := 0
	for _, set := range []bool{up, down, to} {
		if set {
			given++
		}
	}
	if given != 1 {
		return 0, errors.MoveTargetRequired(usage)
	}

	switch {
	case up:
		return -1, nil
	case down:
		return 1, nil
	}

	position := cmd.Int("to")
	if position < 1 {
		return 0, errors.MoveTargetRequired(usage)
	}
	return position - 1 - index, nil
}

func widgetSelectCommand(cmd *cli.Command, selected bool) error {
	keys := cmd.Args().Slice()
	all := cmd.Bool("all")
	if len(keys) == 0 && !all {
		verb := "select"
		if !selected {
			verb = "deselect"
		}
		return errors.WidgetKeyRequired(fmt.Sprintf("mwd widget %s [--all] <key>...", verb))
	}

	settings, path, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := applySelection(settings, keys, all, selected); err != nil {
		return err
	}

	if err := saveSettings(path, settings); err != nil {
		return err
	}

	fmt.Fprintf(commandWriter(cmd), "%d widget(s) selected\n", len(settings.Selected()))
	return nil
}

func applySelection(settings *config.Settings, keys []string, all, selected bool) error {
	switch {
	case all && selected:
		settings.SelectAll()
		return nil
	case all:
		settings.DeselectAll()
		return nil
	}

	var err error
	if selected {
		err = settings.Select(keys...)
	} else {
		err = settings.Deselect(keys...)
	}
	if err == nil {
		return nil
	}

	for _, key := range keys {
		if _, ok := settings.FindWidget(key); !ok {
			return errors.WidgetNotFound(key, settings.WidgetKeys())
		}
	}
	return err
}

func widgetLookupError(err error, key string, settings *config.Settings) error {
	if stderrors.Is(err, config.ErrWidgetNotFound) {
		return errors.WidgetNotFound(key, settings.WidgetKeys())
	}
	return err
}

func widgetListCommand(_ context.Context, cmd *cli.Command) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	w := commandWriter(cmd)
	if cmd.Bool("quiet") {
		for _, key := range settings.WidgetKeys() {
			fmt.Fprintln(w, key)
		}
		return nil
	}

	displayWidgets(w, settings, getTerminalWidth())
	return nil
}

// displayWidgets prints a table of widgets. The PATH column is shortened from
// the left so the table fits in width.
func displayWidgets(w io.Writer, settings *config.Settings, width int) {
	if len(settings.Widgets) == 0 {
		fmt.Fprintln(w, "No widgets registered. Run 'mwd widget add <key>' to add one.")
		return
	}

	keyWidth, nameWidth := len("KEY"), len("NAME")
	for _, widget := range settings.Widgets {
		keyWidth = max(keyWidth, utf8.RuneCountInString(widget.Key))
		nameWidth = max(nameWidth, utf8.RuneCountInString(widget.Name))
	}

	pathWidth := width - selectedColumnLen - keyWidth - nameWidth - 2*columnGap
	pathWidth = max(pathWidth, minPathWidth)

	fmt.Fprintf(w, "%-*s%-*s  %-*s  %s\n", selectedColumnLen, "", keyWidth, "KEY", nameWidth, "NAME", "PATH")
	for _, widget := range settings.Widgets {
		marker := ""
		if settings.SelectedWidgets[widget.Key] {
			marker = selectedMarker
		}
		fmt.Fprintf(w, "%-*s%-*s  %-*s  %s\n",
			selectedColumnLen, marker,
			keyWidth, widget.Key,
			nameWidth, widget.Name,
			truncatePath(widget.SourceDir(settings.BasePath), pathWidth))
	}
}

func truncatePath(path string, width int) string {
	runes := []rune(path)
	if len(runes) <= width {
		return path
	}
	if width <= len(ellipsis) {
		return string(runes[len(runes)-width:])
	}
	return ellipsis + string(runes[len(runes)-(width-len(ellipsis)):])
}
