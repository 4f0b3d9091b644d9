package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const (
	dirPerm  = 0755
	filePerm = 0600
)

// TestEnvironment is a scratch workspace with a freshly built mwd binary,
// a widget base directory and a destination directory.
type TestEnvironment struct {
	t          *testing.T
	tmpDir     string
	mwdBinary  string
	configPath string
	cleanup    []func()
}

func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("e2e build scripts use POSIX sh")
	}

	tmpDir := t.TempDir()
	env := &TestEnvironment{
		t:          t,
		tmpDir:     tmpDir,
		configPath: filepath.Join(tmpDir, "config", "settings.yml"),
		cleanup:    []func(){},
	}

	env.buildMWD()
	env.mkdir(env.BaseDir())
	env.mkdir(env.DestDir())

	return env
}

func (e *TestEnvironment) buildMWD() {
	e.t.Helper()

	mwdBinary := filepath.Join(e.tmpDir, "mwd")
	if prebuilt := os.Getenv("MWD_E2E_BINARY"); prebuilt != "" {
		mwdBinary = prebuilt
		if _, err := os.Stat(mwdBinary); err != nil {
			e.t.Fatalf("Specified mwd binary not found: %s", mwdBinary)
		}
	} else {
		projectRoot := e.findProjectRoot()
		cmd := exec.Command("go", "build", "-o", mwdBinary, "./cmd/mwd")
		cmd.Dir = projectRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			e.t.Fatalf("Failed to build mwd binary: %v\nOutput: %s", err, output)
		}
	}

	mwdBinary = filepath.Clean(mwdBinary)
	if !filepath.IsAbs(mwdBinary) {
		absPath, err := filepath.Abs(mwdBinary)
		if err != nil {
			e.t.Fatalf("Failed to get absolute path for binary: %v", err)
		}
		mwdBinary = absPath
	}

	e.mwdBinary = mwdBinary
}

func (e *TestEnvironment) findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			e.t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}

func (e *TestEnvironment) mkdir(dir string) {
	e.t.Helper()

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}
}

func (e *TestEnvironment) writeFile(path, content string) {
	e.t.Helper()

	e.mkdir(filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// RunMWD runs the binary against this environment's settings file and
// returns combined stdout and stderr.
func (e *TestEnvironment) RunMWD(args ...string) (string, error) {
	for _, arg := range args {
		if err := validateArg(arg); err != nil {
			return "", fmt.Errorf("invalid argument: %w", err)
		}
	}

	cmd := createSafeCommand(e.mwdBinary, args...)
	cmd.Dir = e.tmpDir
	cmd.Env = append(os.Environ(), "MWD_CONFIG="+e.configPath, "HOME="+e.tmpDir)

	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (e *TestEnvironment) TmpDir() string {
	return e.tmpDir
}

func (e *TestEnvironment) BaseDir() string {
	return filepath.Join(e.tmpDir, "widgets")
}

func (e *TestEnvironment) DestDir() string {
	return filepath.Join(e.tmpDir, "project", "widgets")
}

func (e *TestEnvironment) ConfigPath() string {
	return e.configPath
}

// ReadConfig returns the raw settings file
func (e *TestEnvironment) ReadConfig() string {
	e.t.Helper()

	content, err := os.ReadFile(e.configPath)
	if err != nil {
		e.t.Fatalf("Failed to read settings %s: %v", e.configPath, err)
	}
	return string(content)
}

// UseBuildScript replaces the build script in an initialized settings file
func (e *TestEnvironment) UseBuildScript(script string) {
	e.t.Helper()

	config := e.ReadConfig()
	updated := strings.Replace(config, "script: pnpm run build", "script: "+script, 1)
	if updated == config {
		e.t.Fatalf("No default build script in settings:\n%s", config)
	}
	e.writeFile(e.configPath, updated)
}

// CreateWidget creates a widget source directory under the base directory
// with a build.sh the settings can point the build script at.
func (e *TestEnvironment) CreateWidget(name, buildScript string) *TestWidget {
	e.t.Helper()

	dir := filepath.Join(e.BaseDir(), name)
	e.writeFile(filepath.Join(dir, "package.json"), fmt.Sprintf(`{"name": %q}`, name))
	e.writeFile(filepath.Join(dir, "build.sh"), buildScript)

	return &TestWidget{env: e, name: name, path: dir}
}

// PackageScript returns a build.sh body that writes <file> into dist/1.0.0.
func PackageScript(file, content string) string {
	return fmt.Sprintf("mkdir -p dist/1.0.0\nprintf '%%s' '%s' > dist/1.0.0/%s\n", content, file)
}

// FailingScript returns a build.sh body that prints to stderr and exits code.
func FailingScript(message string, code int) string {
	return fmt.Sprintf("echo '%s' >&2\nexit %d\n", message, code)
}

func (e *TestEnvironment) DestFile(name string) string {
	return filepath.Join(e.DestDir(), name)
}

func (e *TestEnvironment) HasDestFile(name string) bool {
	_, err := os.Stat(e.DestFile(name))
	return err == nil
}

func (e *TestEnvironment) ReadDestFile(name string) string {
	e.t.Helper()

	content, err := os.ReadFile(e.DestFile(name))
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", name, err)
	}
	return string(content)
}

func (e *TestEnvironment) Cleanup() {
	for _, fn := range e.cleanup {
		fn()
	}
}

type TestWidget struct {
	env  *TestEnvironment
	name string
	path string
}

func (w *TestWidget) Name() string {
	return w.name
}

func (w *TestWidget) Path() string {
	return w.path
}

func (w *TestWidget) HasFile(path string) bool {
	_, err := os.Stat(filepath.Join(w.path, path))
	return err == nil
}

// validateArg checks if an argument is safe to pass to exec.Command
func validateArg(arg string) error {
	if arg == "" {
		return nil
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\n", "\r"}
	for _, char := range dangerousChars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument contains potentially dangerous character: %s", char)
		}
	}

	return nil
}

// createSafeCommand creates an exec.Cmd with a validated binary path
func createSafeCommand(binary string, args ...string) *exec.Cmd {
	return exec.Command(binary, args...)
}
