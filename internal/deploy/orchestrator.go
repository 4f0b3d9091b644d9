// Package deploy builds a batch of widgets and copies their packaged
// artifacts into a destination directory.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/artifact"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/build"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/metrics"
)

// DefaultOutputDir is where a widget build leaves its artifact, relative to
// the widget source directory.
const DefaultOutputDir = "dist/1.0.0"

// Pipeline stage names used for timing.
const (
	phaseResolve = "resolve"
	phaseBuild   = "build"
	phaseLocate  = "locate"
	phaseCopy    = "copy"
)

// Orchestrator runs widgets through resolve, build, locate and copy, one
// widget at a time.
type Orchestrator struct {
	invoker   build.Invoker
	logger    *slog.Logger
	recorder  metrics.Recorder
	outputDir string
	ext       string
	progress  io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithOutputDir sets the artifact directory relative to each widget source.
func WithOutputDir(rel string) Option {
	return func(o *Orchestrator) {
		if rel != "" {
			o.outputDir = filepath.FromSlash(rel)
		}
	}
}

func WithArtifactExt(ext string) Option {
	return func(o *Orchestrator) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithProgress writes one line per widget as the batch advances.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.progress = w
	}
}

// New returns an Orchestrator that builds with invoker.
func New(invoker build.Invoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker:   invoker,
		logger:    slog.New(slog.DiscardHandler),
		recorder:  metrics.NoopRecorder{},
		outputDir: filepath.FromSlash(DefaultOutputDir),
		ext:       artifact.DefaultExtension,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunBatch deploys widgetIDs in order. Each ID is joined to basePath unless
// it is absolute. Per-widget failures are recorded in the report; the only
// error returned is a *PreconditionError when destinationPath is not a
// usable directory, in which case nothing is built.
func (o *Orchestrator) RunBatch(ctx context.Context, widgetIDs []string, basePath, destinationPath string) (*Report, error) {
	return o.RunBatchTo(ctx, widgetIDs, basePath, []string{destinationPath})
}

// RunBatchTo is RunBatch for several destinations. Every widget is built
// once and its artifact is copied into each destination in order. All
// destinations are checked before the first build.
func (o *Orchestrator) RunBatchTo(ctx context.Context, widgetIDs []string, basePath string, destinations []string) (*Report, error) {
	if len(destinations) == 0 {
		return nil, &PreconditionError{Reason: "is not set"}
	}
	for _, dest := range destinations {
		if err := checkDestination(dest); err != nil {
			o.logger.Error("batch not started", "destination", dest, "error", err)
			return nil, err
		}
	}

	start := time.Now()
	o.logger.Info("batch started", "widgets", len(widgetIDs), "base", basePath, "destinations", destinations)

	report := &Report{Outcomes: make([]WidgetOutcome, 0, len(widgetIDs))}
	for i, id := range widgetIDs {
		o.progressf("[%d/%d] %s\n", i+1, len(widgetIDs), id)

		outcome := o.deployWidget(ctx, id, basePath, destinations)
		report.add(id, outcome)

		if outcome.OK() {
			o.recorder.IncWidgetOutcome("deployed")
			for _, copied := range outcome.ArtifactPaths {
				o.progressf("  ✓ %s\n", copied)
			}
		} else {
			o.recorder.IncWidgetOutcome(string(outcome.Stage))
			o.progressf("  ✗ %s\n", firstLine(outcome.Message))
		}
	}

	status := report.Status()
	o.recorder.IncBatchOutcome(string(status))
	o.recorder.ObserveBatchDuration(time.Since(start))
	o.logger.Info("batch finished",
		"status", string(status),
		"succeeded", report.Succeeded,
		"failed", report.Failed(),
		"duration", time.Since(start))

	return report, nil
}

func checkDestination(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &PreconditionError{Path: path, Reason: "does not exist", Err: err}
	}
	if !info.IsDir() {
		return &PreconditionError{Path: path, Reason: "is not a directory"}
	}
	return nil
}

func (o *Orchestrator) deployWidget(ctx context.Context, id, basePath string, destinations []string) Outcome {
	logger := o.logger.With("widget", id)

	source := id
	if !filepath.IsAbs(source) {
		source = filepath.Join(basePath, id)
	}

	if out, ok := o.resolve(source); !ok {
		logger.Warn("source missing", "path", source, "error", out.Err)
		return out
	}

	if out, ok := o.build(ctx, id, source, logger); !ok {
		return out
	}

	found, out, ok := o.locate(id, source)
	if !ok {
		logger.Warn("artifact lookup failed", "stage", string(out.Stage), "error", out.Err)
		return out
	}

	copies := make([]string, 0, len(destinations))
	for _, dest := range destinations {
		started := time.Now()
		copied, err := artifact.Copy(found, dest)
		o.recorder.ObserveStageDuration(phaseCopy, time.Since(started))
		if err != nil {
			logger.Warn("copy failed", "artifact", found, "destination", dest, "error", err)
			return Outcome{
				Stage:         StageCopyFailed,
				ArtifactPaths: copies,
				Message:       fmt.Sprintf("Failed to copy %s for %s: %v", o.ext, id, err),
				Err:           err,
			}
		}
		copies = append(copies, copied)
	}

	logger.Info("widget deployed", "artifacts", copies)
	return Outcome{ArtifactPath: copies[0], ArtifactPaths: copies}
}

func (o *Orchestrator) resolve(source string) (Outcome, bool) {
	started := time.Now()
	defer func() { o.recorder.ObserveStageDuration(phaseResolve, time.Since(started)) }()

	info, err := os.Stat(source)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", source)
	}
	if err != nil {
		return Outcome{
			Stage:   StageSourceMissing,
			Message: "Widget path does not exist: " + source,
			Err:     err,
		}, false
	}
	return Outcome{}, true
}

func (o *Orchestrator) build(ctx context.Context, id, source string, logger *slog.Logger) (Outcome, bool) {
	started := time.Now()
	logger.Debug("build started", "dir", source)

	result, err := o.invoker.Invoke(ctx, source)
	o.recorder.ObserveStageDuration(phaseBuild, time.Since(started))

	if err != nil {
		stage := StageBuildFailed
		var spawnErr *build.SpawnError
		if errors.As(err, &spawnErr) {
			stage = StageSpawnFailed
		}
		logger.Warn("build failed", "stage", string(stage), "duration", time.Since(started), "error", err)
		return Outcome{
			Stage:   stage,
			Message: fmt.Sprintf("Build failed for %s: %v", id, err),
			Err:     err,
		}, false
	}

	logger.Debug("build output", "stdout", result.Stdout, "stderr", result.Stderr)
	logger.Info("build finished", "duration", time.Since(started))
	return Outcome{}, true
}

func (o *Orchestrator) locate(id, source string) (string, Outcome, bool) {
	started := time.Now()
	defer func() { o.recorder.ObserveStageDuration(phaseLocate, time.Since(started)) }()

	found, err := artifact.Locate(filepath.Join(source, o.outputDir), o.ext)
	if err != nil {
		stage := StageArtifactMissing
		if errors.Is(err, artifact.ErrArtifactAmbiguous) {
			stage = StageArtifactAmbiguous
		}
		return "", Outcome{
			Stage:   stage,
			Message: fmt.Sprintf("Failed to copy %s for %s: %v", o.ext, id, err),
			Err:     err,
		}, false
	}
	return found, Outcome{}, true
}

func (o *Orchestrator) progressf(format string, args ...any) {
	if o.progress == nil {
		return
	}
	fmt.Fprintf(o.progress, format, args...)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
