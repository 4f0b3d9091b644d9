package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// realShellExecutor implements ShellExecutor using os/exec
type realShellExecutor struct{}

// NewRealShellExecutor creates a new shell executor that executes real commands
func NewRealShellExecutor() ShellExecutor {
	return &realShellExecutor{}
}

// Execute runs the command and waits for it to exit. Stdout and stderr are
// captured separately. A non-zero exit is returned as *exec.ExitError with the
// captured output still populated.
func (s *realShellExecutor) Execute(ctx context.Context, c Command) (Output, error) {
	// #nosec G204 - the build script comes from the user's own settings file
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)

	if c.WorkDir != "" {
		cmd.Dir = c.WorkDir
	}

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)

	err := cmd.Run()

	out := Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	return out, err
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	ExitCode() int
}

// IsExitError reports whether err means the process ran and exited non-zero,
// as opposed to never starting.
func IsExitError(err error) bool {
	var exitErr exitCoder
	return errors.As(err, &exitErr)
}
