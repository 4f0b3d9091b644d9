package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/build"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/deploy"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/errors"
	mwdio "github.com/GG-O-BP/mendix-multi-widget-diployer/internal/io"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/metrics"
)

// NewBuildCommand creates the build command definition
func NewBuildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build widgets and deploy their packages",
		ArgsUsage: "[KEY...]",
		Description: "Runs the build script in each widget directory, one widget at a time, and copies " +
			"the single package found in the build output into every destination.\n\n" +
			"Destinations are taken from --dest, then --app, then the selected apps, then the " +
			"destination path in the settings.\n\n" +
			"Without KEY arguments the selected widgets are built. A batch where some widgets " +
			"fail still exits 0 and lists the failures; it exits 1 only when every widget failed.",
		ShellComplete: completeWidgetKeys,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Build every registered widget",
			},
			&cli.StringFlag{
				Name:  "base",
				Usage: "Directory holding the widget sources (overrides settings)",
			},
			&cli.StringFlag{
				Name:  "dest",
				Usage: "Destination directory for packages (overrides apps and settings)",
			},
			&cli.StringSliceFlag{
				Name:  "app",
				Usage: "Deploy to the registered app `KEY` instead of the selected apps (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Stream build output while it runs",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print the summary",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics for this run to `FILE`",
			},
		},
		Action: buildCommand,
	}
}

type buildOptions struct {
	Keys        []string
	All         bool
	Base        string
	Dest        string
	Apps        []string
	Verbose     bool
	Quiet       bool
	MetricsFile string
}

func buildCommand(ctx context.Context, cmd *cli.Command) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	env, err := settings.BuildEnv()
	if err != nil {
		return errors.BuildEnvFailed(err)
	}

	decoder, err := settings.Decoder()
	if err != nil {
		return err
	}

	opts := buildOptions{
		Keys:        cmd.Args().Slice(),
		All:         cmd.Bool("all"),
		Base:        cmd.String("base"),
		Dest:        cmd.String("dest"),
		Apps:        cmd.StringSlice("app"),
		Verbose:     cmd.Bool("verbose"),
		Quiet:       cmd.Bool("quiet"),
		MetricsFile: cmd.String("metrics-file"),
	}

	var invoker build.Invoker = build.NewShellInvoker(settings.Build.Script, env, decoder)
	if opts.Verbose {
		invoker = &streamingInvoker{
			inner:  invoker.(*build.ShellInvoker),
			out:    mwdio.NewFlushingWriter(commandErrWriter(cmd)),
			decode: decoder.Decode,
		}
	}

	return buildCommandWithInvoker(ctx, commandWriter(cmd), settings, invoker, runLogger(cmd, settings), opts)
}

func buildCommandWithInvoker(
	ctx context.Context, w io.Writer, settings *config.Settings, invoker build.Invoker, logger *slog.Logger,
	opts buildOptions,
) error {
	widgets, err := resolveBuildTargets(settings, opts)
	if err != nil {
		return err
	}

	base := opts.Base
	if base == "" {
		base = settings.BasePath
	}

	destinations, err := resolveDestinations(settings, opts)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(widgets))
	for _, widget := range widgets {
		if base == "" && !filepath.IsAbs(widget.Path) {
			return errors.BasePathRequired()
		}
		ids = append(ids, widget.Path)
	}

	deployOpts := []deploy.Option{
		deploy.WithLogger(logger),
		deploy.WithOutputDir(settings.OutputDir()),
		deploy.WithArtifactExt(settings.Build.ArtifactExtension),
	}
	if !opts.Quiet {
		deployOpts = append(deployOpts, deploy.WithProgress(w))
	}

	var recorder *metrics.PrometheusRecorder
	if opts.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		deployOpts = append(deployOpts, deploy.WithRecorder(recorder))
	}

	report, err := deploy.New(invoker, deployOpts...).RunBatchTo(ctx, ids, base, destinations)
	if err != nil {
		path := destinations[0]
		var pe *deploy.PreconditionError
		if stderrors.As(err, &pe) {
			path = pe.Path
		}
		return errors.DestinationMissing(path, err)
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn("metrics not written", "path", opts.MetricsFile, "error", err)
			if batchErr := report.Err(); batchErr != nil {
				return batchErr
			}
			return errors.MetricsWriteFailed(opts.MetricsFile, err)
		}
	}

	if batchErr := report.Err(); batchErr != nil {
		return batchErr
	}

	fmt.Fprintln(w, report.Summary())
	return nil
}

// resolveBuildTargets picks the widgets to build: explicit keys, --all, or
// the current selection, in that order of precedence.
func resolveBuildTargets(settings *config.Settings, opts buildOptions) ([]config.Widget, error) {
	if len(opts.Keys) > 0 {
		widgets := make([]config.Widget, 0, len(opts.Keys))
		for _, key := range opts.Keys {
			widget, ok := settings.FindWidget(key)
			if !ok {
				return nil, errors.WidgetNotFound(key, settings.WidgetKeys())
			}
			widgets = append(widgets, *widget)
		}
		return widgets, nil
	}

	if opts.All {
		if len(settings.Widgets) == 0 {
			return nil, errors.NoWidgetsSelected()
		}
		return settings.Widgets, nil
	}

	selected := settings.Selected()
	if len(selected) == 0 {
		return nil, errors.NoWidgetsSelected()
	}
	return selected, nil
}

// resolveDestinations picks the directories that receive the packages:
// --dest, then --app keys, then the selected apps, then destination_path.
func resolveDestinations(settings *config.Settings, opts buildOptions) ([]string, error) {
	if opts.Dest != "" {
		return []string{opts.Dest}, nil
	}

	apps := settings.TargetApps()
	if len(opts.Apps) > 0 {
		apps = make([]config.App, 0, len(opts.Apps))
		for _, key := range opts.Apps {
			app, ok := settings.FindApp(key)
			if !ok {
				return nil, errors.AppNotFound(key, settings.AppKeys())
			}
			apps = append(apps, *app)
		}
	}

	if len(apps) > 0 {
		dests := make([]string, 0, len(apps))
		for _, app := range apps {
			dests = append(dests, app.Dir())
		}
		return dests, nil
	}

	if settings.DestinationPath != "" {
		return []string{settings.DestinationPath}, nil
	}
	if len(settings.Apps) > 0 {
		return nil, errors.NoAppsSelected(settings.AppKeys())
	}
	return nil, errors.DestinationRequired()
}

// streamingInvoker prints each build's output line by line as it runs,
// prefixed with the widget directory name.
type streamingInvoker struct {
	inner  *build.ShellInvoker
	out    io.Writer
	decode func([]byte) string
}

func (s *streamingInvoker) Invoke(ctx context.Context, workDir string) (build.Result, error) {
	prefix := "[" + filepath.Base(workDir) + "] "
	stdout := mwdio.NewLineWriter(s.out, prefix, s.decode)
	stderr := mwdio.NewLineWriter(s.out, prefix, s.decode)

	invoker := *s.inner
	invoker.Stream = func(string) (io.Writer, io.Writer) {
		return stdout, stderr
	}

	result, err := invoker.Invoke(ctx, workDir)
	_ = stdout.Flush()
	_ = stderr.Flush()
	return result, err
}
