package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/textdecode"
)

// Settings represents the deployer configuration
type Settings struct {
	Version         string          `yaml:"version"`
	BasePath        string          `yaml:"base_path,omitempty"`
	DestinationPath string          `yaml:"destination_path,omitempty"`
	Widgets         []Widget        `yaml:"widgets,omitempty"`
	SelectedWidgets map[string]bool `yaml:"selected_widgets,omitempty"`
	Apps            []App           `yaml:"apps,omitempty"`
	SelectedApps    map[string]bool `yaml:"selected_apps,omitempty"`
	Build           Build           `yaml:"build,omitempty"`
	Logging         Logging         `yaml:"logging,omitempty"`

	// directory of the file the settings were loaded from (not in YAML)
	dir string `yaml:"-"`
}

// Widget is a registered widget project
type Widget struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Path string `yaml:"path"` // relative to base_path, or absolute
}

// App is a registered Mendix app. Path is the directory that receives the
// packages, usually the app's widgets directory.
type App struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Build configures the per-widget build step
type Build struct {
	Script            string            `yaml:"script,omitempty"`
	OutputDir         string            `yaml:"output_dir,omitempty"`
	ArtifactExtension string            `yaml:"artifact_extension,omitempty"`
	Env               map[string]string `yaml:"env,omitempty"`
	EnvFile           string            `yaml:"env_file,omitempty"`
	Encodings         Encodings         `yaml:"encodings,omitempty"`
}

// Encodings names the legacy code pages tried when build output is not UTF-8
type Encodings struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
}

// Logging configures the diagnostic logger
type Logging struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

const (
	FileName                 = "settings.yml"
	AppDirName               = "mendix-widget-deployer"
	EnvConfigPath            = "MWD_CONFIG"
	CurrentVersion           = "1.0"
	DefaultBuildScript       = "pnpm run build"
	DefaultOutputDir         = "dist/1.0.0"
	DefaultArtifactExtension = ".mpk"
	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "text"
	configFilePermissions    = 0o600
	configDirPermissions     = 0o755
)

// DefaultNodeOptions raises the Node.js heap limit for widget bundling
const DefaultNodeOptions = "--max_old_space_size=4096"

// DefaultPath returns the settings file location: $MWD_CONFIG if set,
// otherwise settings.yml in the user's configuration directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, AppDirName, FileName), nil
}

// Exists reports whether a settings file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Default returns settings with every default filled in
func Default() *Settings {
	s := &Settings{
		Build: Build{
			Env: map[string]string{"NODE_OPTIONS": DefaultNodeOptions},
		},
	}
	s.applyDefaults()
	return s
}

// Load reads settings from path. A missing file yields defaults; nothing is written.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s := Default()
		s.dir = filepath.Dir(path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s.dir = filepath.Dir(path)
	return &s, nil
}

// Save validates s and writes it to path, creating the parent directory
func Save(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (s *Settings) applyDefaults() {
	if s.Version == "" {
		s.Version = CurrentVersion
	}
	if s.Build.Script == "" {
		s.Build.Script = DefaultBuildScript
	}
	if s.Build.OutputDir == "" {
		s.Build.OutputDir = DefaultOutputDir
	}
	if s.Build.ArtifactExtension == "" {
		s.Build.ArtifactExtension = DefaultArtifactExtension
	}
	if s.Logging.Level == "" {
		s.Logging.Level = DefaultLogLevel
	}
	if s.Logging.Format == "" {
		s.Logging.Format = DefaultLogFormat
	}
	if s.SelectedWidgets == nil {
		s.SelectedWidgets = map[string]bool{}
	}
	if s.SelectedApps == nil {
		s.SelectedApps = map[string]bool{}
	}
}

// Validate fills defaults and checks the settings
func (s *Settings) Validate() error {
	s.applyDefaults()

	seen := make(map[string]bool, len(s.Widgets))
	for i, w := range s.Widgets {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("invalid widget %d: %w", i+1, err)
		}
		if seen[w.Key] {
			return fmt.Errorf("duplicate widget key '%s'", w.Key)
		}
		seen[w.Key] = true
	}

	seenApps := make(map[string]bool, len(s.Apps))
	for i, a := range s.Apps {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid app %d: %w", i+1, err)
		}
		if seenApps[a.Key] {
			return fmt.Errorf("duplicate app key '%s'", a.Key)
		}
		seenApps[a.Key] = true
	}

	if !strings.HasPrefix(s.Build.ArtifactExtension, ".") {
		return fmt.Errorf("artifact_extension must start with '.', got '%s'", s.Build.ArtifactExtension)
	}

	if filepath.IsAbs(s.Build.OutputDir) {
		return fmt.Errorf("output_dir must be relative to the widget directory, got '%s'", s.Build.OutputDir)
	}

	if _, err := s.Decoder(); err != nil {
		return err
	}

	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s', must be debug, info, warn or error", s.Logging.Level)
	}

	switch s.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s', must be 'text' or 'json'", s.Logging.Format)
	}

	return nil
}

// Validate validates a single widget entry
func (w *Widget) Validate() error {
	if strings.TrimSpace(w.Key) == "" {
		return fmt.Errorf("key is required for widget")
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("name is required for widget '%s'", w.Key)
	}
	if strings.TrimSpace(w.Path) == "" {
		return fmt.Errorf("path is required for widget '%s'", w.Key)
	}
	return nil
}

// Validate validates a single app entry
func (a *App) Validate() error {
	if strings.TrimSpace(a.Key) == "" {
		return fmt.Errorf("key is required for app")
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("name is required for app '%s'", a.Key)
	}
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("path is required for app '%s'", a.Key)
	}
	return nil
}

// Decoder returns the build output decoder for the configured encodings
func (s *Settings) Decoder() (textdecode.Decoder, error) {
	d, err := textdecode.ForEncodings(s.Build.Encodings.Primary, s.Build.Encodings.Secondary)
	if err != nil {
		return textdecode.Decoder{}, fmt.Errorf("invalid encodings: %w", err)
	}
	return d, nil
}

// BuildEnv returns KEY=VALUE entries for the build process: variables from
// env_file first, then the env map, which wins on conflicts.
func (s *Settings) BuildEnv() ([]string, error) {
	vars := make(map[string]string)

	if s.Build.EnvFile != "" {
		envFile := s.Build.EnvFile
		if !filepath.IsAbs(envFile) && s.dir != "" {
			envFile = filepath.Join(s.dir, envFile)
		}
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file '%s': %w", envFile, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for k, v := range s.Build.Env {
		vars[k] = v
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}

// OutputDir returns the artifact directory inside a widget's source directory
func (s *Settings) OutputDir() string {
	return filepath.FromSlash(s.Build.OutputDir)
}
