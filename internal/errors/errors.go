package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error messages with helpful context and suggestions

// Path Errors
func BasePathRequired() error {
	msg := `base path is not configured

The base path is the directory that holds one subdirectory per widget.

Solutions:
  • Run 'mwd paths --base <dir>' to store it in the settings
  • Pass '--base <dir>' to 'mwd build'`
	return errors.New(msg)
}

func DestinationRequired() error {
	msg := `destination path is not configured

The destination is the Mendix project's widgets directory that receives the .mpk files.

Solutions:
  • Register the app: mwd app add <key> --path <dir>
  • Run 'mwd paths --dest <dir>' to store it in the settings
  • Pass '--dest <dir>' to 'mwd build'`
	return errors.New(msg)
}

func DestinationMissing(path string, originalError error) error {
	msg := fmt.Sprintf("destination directory is not usable: %s", path)

	errorStr := ""
	if originalError != nil {
		errorStr = originalError.Error()
	}
	switch {
	case strings.Contains(errorStr, "is not a directory"):
		msg += `

Cause: Destination is a file, not a directory
Solution: Point '--dest' at the project's widgets directory`
	case strings.Contains(errorStr, "permission denied"):
		msg += `

Cause: Permission denied
Solution: Check directory permissions`
	default:
		msg += `

Cause: Directory does not exist
Solutions:
  • Check the path spelling
  • Create the directory first
  • Run 'mwd paths' to see the configured paths`
	}

	if originalError != nil {
		msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	}
	return errors.New(msg)
}

// Widget Errors
func WidgetKeyRequired(commandExample string) error {
	msg := fmt.Sprintf(`widget key is required

Usage: %s

Tip: Run 'mwd widget list' to see registered widgets`, commandExample)
	return errors.New(msg)
}

func WidgetNotFound(key string, availableWidgets []string) error {
	msg := fmt.Sprintf("widget with key '%s' not found", key)

	if len(availableWidgets) > 0 {
		msg += "\n\nAvailable widgets:"
		for _, w := range availableWidgets {
			msg += fmt.Sprintf("\n  • %s", w)
		}
	} else {
		msg += "\n\nNo widgets registered."
	}

	msg += "\n\nTip: Run 'mwd widget add <name>' to register a widget"
	return errors.New(msg)
}

func WidgetAlreadyExists(key string) error {
	msg := fmt.Sprintf(`widget with key '%s' already exists

Solutions:
  • Choose a different key
  • Update the existing widget with 'mwd widget update %s'
  • Remove it first with 'mwd widget remove %s'`, key, key, key)
	return errors.New(msg)
}

func NoWidgetsSelected() error {
	msg := `no widgets selected

Solutions:
  • Name widgets explicitly: mwd build badge chart
  • Build every registered widget: mwd build --all
  • Select widgets for later runs: mwd widget select badge chart`
	return errors.New(msg)
}

func MoveTargetRequired(commandExample string) error {
	msg := fmt.Sprintf(`give exactly one of --up, --down or --to <position>

Positions start at 1; registry order is build order.

Usage: %s`, commandExample)
	return errors.New(msg)
}

// App Errors
func AppKeyRequired(commandExample string) error {
	msg := fmt.Sprintf(`app key is required

Usage: %s

Tip: Run 'mwd app list' to see registered apps`, commandExample)
	return errors.New(msg)
}

func AppNotFound(key string, availableApps []string) error {
	msg := fmt.Sprintf("app with key '%s' not found", key)

	if len(availableApps) > 0 {
		msg += "\n\nAvailable apps:"
		for _, a := range availableApps {
			msg += fmt.Sprintf("\n  • %s", a)
		}
	} else {
		msg += "\n\nNo apps registered."
	}

	msg += "\n\nTip: Run 'mwd app add <key> --path <dir>' to register an app"
	return errors.New(msg)
}

func AppAlreadyExists(key string) error {
	msg := fmt.Sprintf(`app with key '%s' already exists

Solutions:
  • Choose a different key
  • Update the existing app with 'mwd app update %s'
  • Remove it first with 'mwd app remove %s'`, key, key, key)
	return errors.New(msg)
}

func NoAppsSelected(availableApps []string) error {
	msg := `no apps selected for deployment

Solutions:
  • Select apps: mwd app select <key>...
  • Deploy to one app for this run: mwd build --app <key>
  • Deploy to a directory: mwd build --dest <dir>`
	if len(availableApps) > 0 {
		msg += "\n\nRegistered apps:"
		for _, a := range availableApps {
			msg += fmt.Sprintf("\n  • %s", a)
		}
	}
	return errors.New(msg)
}

// Configuration Errors
func ConfigLoadFailed(configPath string, parseError error) error {
	msg := fmt.Sprintf("failed to load settings from '%s'", configPath)

	parseErrorStr := parseError.Error()
	if strings.Contains(parseErrorStr, "yaml") || strings.Contains(parseErrorStr, "parse") {
		msg += `

Cause: YAML syntax error in settings file
Solutions:
  • Check YAML syntax and indentation
  • Run 'mwd init --force' to recreate the settings`
	} else if strings.Contains(parseErrorStr, "invalid configuration") {
		msg += `

Cause: Settings file contains invalid values
Solution: Fix the field named below, or run 'mwd init --force' to start over`
	} else if strings.Contains(parseErrorStr, "permission denied") {
		msg += `

Cause: Permission denied reading settings file
Solution: Check file permissions of the settings file`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", parseError)
	return errors.New(msg)
}

func ConfigSaveFailed(configPath string, originalError error) error {
	msg := fmt.Sprintf("failed to save settings to '%s'", configPath)
	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

func ConfigAlreadyExists(configPath string) error {
	msg := fmt.Sprintf(`settings file already exists: %s

Options:
  • Edit the existing file manually
  • Use 'mwd init --force' to overwrite it`, configPath)
	return errors.New(msg)
}

// File System Errors
func DirectoryAccessFailed(operation, path string, originalError error) error {
	msg := fmt.Sprintf("failed to %s directory: %s", operation, path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solutions:
  • Check directory permissions
  • Ensure you own the directory`
	} else if strings.Contains(errorStr, "no such file or directory") {
		msg += `

Cause: Directory does not exist
Solutions:
  • Create the parent directory first
  • Check the path spelling
  • Use an absolute path`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

// Build Errors
func BuildEnvFailed(originalError error) error {
	msg := `failed to prepare the build environment

Solutions:
  • Check that 'build.env_file' in the settings points at a readable file
  • Remove 'build.env_file' to use only 'build.env'`
	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

func MetricsWriteFailed(path string, originalError error) error {
	msg := fmt.Sprintf("failed to write metrics to '%s'", path)
	msg += "\n\nTip: The build itself finished; only the metrics file is missing."
	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}
