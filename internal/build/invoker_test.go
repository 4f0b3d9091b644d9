package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/command"
	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/textdecode"
)

// mockShellExecutor records the command and returns a canned result
type mockShellExecutor struct {
	lastCommand command.Command
	output      command.Output
	err         error
}

func (m *mockShellExecutor) Execute(_ context.Context, cmd command.Command) (command.Output, error) {
	m.lastCommand = cmd
	if cmd.Stdout != nil {
		_, _ = cmd.Stdout.Write(m.output.Stdout)
	}
	return m.output, m.err
}

// mockExitError mimics *exec.ExitError
type mockExitError struct{ code int }

func (e *mockExitError) Error() string { return "exit status" }
func (e *mockExitError) ExitCode() int { return e.code }

func TestShellInvoker_Success(t *testing.T) {
	mockShell := &mockShellExecutor{
		output: command.Output{Stdout: []byte("built Badge.mpk\n"), Stderr: []byte("warning: peer dep\n")},
	}
	invoker := &ShellInvoker{
		Executor: mockShell,
		Script:   "pnpm run build",
		Env:      []string{"NODE_OPTIONS=--max_old_space_size=4096"},
		GOOS:     "linux",
	}

	result, err := invoker.Invoke(context.Background(), "/widgets/badge")

	require.NoError(t, err)
	assert.Equal(t, "built Badge.mpk\n", result.Stdout)
	assert.Equal(t, "warning: peer dep\n", result.Stderr)

	assert.Equal(t, "sh", mockShell.lastCommand.Name)
	assert.Equal(t, []string{"-c", "pnpm run build"}, mockShell.lastCommand.Args)
	assert.Equal(t, "/widgets/badge", mockShell.lastCommand.WorkDir)
	assert.Contains(t, mockShell.lastCommand.Env, "PYTHONIOENCODING=utf-8")
	assert.Contains(t, mockShell.lastCommand.Env, "NODE_OPTIONS=--max_old_space_size=4096")
}

func TestShellInvoker_WindowsUsesPowerShell(t *testing.T) {
	mockShell := &mockShellExecutor{}
	invoker := &ShellInvoker{Executor: mockShell, GOOS: "windows"}

	_, err := invoker.Invoke(context.Background(), `C:\widgets\badge`)

	require.NoError(t, err)
	assert.Equal(t, "powershell.exe", mockShell.lastCommand.Name)
	assert.Contains(t, mockShell.lastCommand.Args[len(mockShell.lastCommand.Args)-1], command.DefaultBuildScript)
}

func TestShellInvoker_ExitFailureKeepsBothStreams(t *testing.T) {
	stderr, err := korean.EUCKR.NewEncoder().String("오류: 모듈을 찾을 수 없습니다")
	require.NoError(t, err)

	mockShell := &mockShellExecutor{
		output: command.Output{Stdout: []byte("> tsc\n"), Stderr: []byte(stderr), ExitCode: 2},
		err:    &mockExitError{code: 2},
	}
	invoker := &ShellInvoker{Executor: mockShell, Decoder: textdecode.Default, GOOS: "linux"}

	_, err = invoker.Invoke(context.Background(), "/widgets/badge")

	require.Error(t, err)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Equal(t, "> tsc\n", exitErr.Stdout)
	assert.Equal(t, "오류: 모듈을 찾을 수 없습니다", exitErr.Stderr)
	assert.Contains(t, err.Error(), "STDOUT: > tsc")
	assert.Contains(t, err.Error(), "STDERR: 오류")

	var spawnErr *SpawnError
	assert.False(t, errors.As(err, &spawnErr))
}

func TestShellInvoker_SpawnFailure(t *testing.T) {
	cause := errors.New(`exec: "sh": executable file not found in $PATH`)
	mockShell := &mockShellExecutor{
		output: command.Output{ExitCode: -1},
		err:    cause,
	}
	invoker := &ShellInvoker{Executor: mockShell, GOOS: "linux"}

	_, err := invoker.Invoke(context.Background(), "/widgets/badge")

	require.Error(t, err)
	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "sh", spawnErr.Command)
	assert.ErrorIs(t, err, cause)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestShellInvoker_Stream(t *testing.T) {
	mockShell := &mockShellExecutor{output: command.Output{Stdout: []byte("progress\n")}}
	var live bytes.Buffer
	var streamedDir string
	invoker := &ShellInvoker{
		Executor: mockShell,
		GOOS:     "linux",
		Stream: func(workDir string) (io.Writer, io.Writer) {
			streamedDir = workDir
			return &live, nil
		},
	}

	_, err := invoker.Invoke(context.Background(), "/widgets/badge")

	require.NoError(t, err)
	assert.Equal(t, "/widgets/badge", streamedDir)
	assert.Equal(t, "progress\n", live.String())
}

func TestNewShellInvoker(t *testing.T) {
	invoker := NewShellInvoker("npm run build", []string{"A=B"}, textdecode.Default)

	assert.NotNil(t, invoker.Executor)
	assert.Equal(t, "npm run build", invoker.Script)
	assert.Equal(t, []string{"A=B"}, invoker.Env)
	assert.Equal(t, runtime.GOOS, invoker.GOOS)
	assert.Implements(t, (*Invoker)(nil), invoker)
}

func TestShellInvoker_RealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX sh")
	}

	dir := t.TempDir()

	t.Run("runs script in working directory", func(t *testing.T) {
		invoker := NewShellInvoker("mkdir -p dist && echo done", nil, textdecode.Default)

		result, err := invoker.Invoke(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, "done\n", result.Stdout)
		assert.DirExists(t, filepath.Join(dir, "dist"))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		invoker := NewShellInvoker("echo broken >&2; exit 1", nil, textdecode.Default)

		_, err := invoker.Invoke(context.Background(), dir)

		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode)
		assert.Equal(t, "broken\n", exitErr.Stderr)
	})

	t.Run("missing working directory", func(t *testing.T) {
		invoker := NewShellInvoker("true", nil, textdecode.Default)

		_, err := invoker.Invoke(context.Background(), filepath.Join(dir, "absent"))

		var spawnErr *SpawnError
		require.True(t, errors.As(err, &spawnErr))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
