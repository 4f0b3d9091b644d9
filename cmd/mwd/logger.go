package main

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
)

// newLogger creates a logger writing to outW. Unknown levels fall back to info.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

// runLogger builds the logger for one command run. Flags override settings;
// every record carries the run's id.
func runLogger(cmd *cli.Command, settings *config.Settings) *slog.Logger {
	level := cmd.String("log-level")
	if level == "" {
		level = settings.Logging.Level
	}
	format := cmd.String("log-format")
	if format == "" {
		format = settings.Logging.Format
	}

	return newLogger(level, format, commandErrWriter(cmd)).With("run_id", uuid.NewString())
}
