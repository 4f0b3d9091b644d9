// Package build runs a widget's build script and reports its decoded output.
package build

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/command"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/textdecode"
)

// Result is the decoded output of a successful build.
type Result struct {
	Stdout string
	Stderr string
}

// Invoker runs the build in a widget's source directory and blocks until it exits.
type Invoker interface {
	Invoke(ctx context.Context, workDir string) (Result, error)
}

// SpawnError means the build process could not be started at all
// (missing interpreter, permissions, unusable working directory).
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError means the build ran and exited non-zero. Both streams are kept
// because build tools print diagnostics to either one.
type ExitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("Build command failed (exit status %d):\nSTDOUT: %s\nSTDERR: %s",
		e.ExitCode, e.Stdout, e.Stderr)
}

// StreamFunc returns the live output writers for a build in workDir. Either
// writer may be nil.
type StreamFunc func(workDir string) (stdout, stderr io.Writer)

// ShellInvoker runs Script through the platform shell.
type ShellInvoker struct {
	Executor command.ShellExecutor
	Script   string
	Env      []string
	Decoder  textdecode.Decoder
	Stream   StreamFunc
	GOOS     string
}

// NewShellInvoker returns an invoker for script using the real process executor.
func NewShellInvoker(script string, env []string, decoder textdecode.Decoder) *ShellInvoker {
	return &ShellInvoker{
		Executor: command.NewRealShellExecutor(),
		Script:   script,
		Env:      env,
		Decoder:  decoder,
		GOOS:     runtime.GOOS,
	}
}

func (s *ShellInvoker) decoder() textdecode.Decoder {
	if s.Decoder.Primary == nil && s.Decoder.Secondary == nil {
		return textdecode.Default
	}
	return s.Decoder
}

// Invoke runs the build in workDir.
func (s *ShellInvoker) Invoke(ctx context.Context, workDir string) (Result, error) {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	cmd := command.BuildCommand(s.Script, goos)
	cmd.WorkDir = workDir
	cmd.Env = append(command.UTF8Env(goos), s.Env...)
	if s.Stream != nil {
		cmd.Stdout, cmd.Stderr = s.Stream(workDir)
	}

	out, err := s.Executor.Execute(ctx, cmd)
	if err != nil && !command.IsExitError(err) {
		return Result{}, &SpawnError{Command: cmd.Name, Err: err}
	}

	dec := s.decoder()
	stdout := dec.Decode(out.Stdout)
	stderr := dec.Decode(out.Stderr)

	if err != nil {
		return Result{}, &ExitError{ExitCode: out.ExitCode, Stdout: stdout, Stderr: stderr}
	}

	return Result{Stdout: stdout, Stderr: stderr}, nil
}
