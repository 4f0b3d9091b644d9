package command

import (
	"context"
	"io"
)

// Command represents a process to be executed
type Command struct {
	Name    string   // Command name (e.g., "sh")
	Args    []string // Command arguments
	WorkDir string   // Optional working directory
	Env     []string // Extra KEY=VALUE entries appended to the inherited environment

	// Optional writers that receive a copy of each stream as it is produced
	Stdout io.Writer
	Stderr io.Writer
}

// Output holds the raw streams of a finished process. ExitCode is -1 when the
// process never started.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ShellExecutor abstracts the actual process execution
type ShellExecutor interface {
	Execute(ctx context.Context, cmd Command) (Output, error)
}
