package command

import "strings"

// DefaultBuildScript is run in each widget directory
const DefaultBuildScript = "pnpm run build"

// powershellUTF8Prelude switches a Windows console to UTF-8 before the build
// script runs; without it PowerShell emits the system code page (e.g. 949).
var powershellUTF8Prelude = []string{
	"$OutputEncoding = [System.Text.Encoding]::UTF8",
	"[Console]::OutputEncoding = [System.Text.Encoding]::UTF8",
	"[Console]::InputEncoding = [System.Text.Encoding]::UTF8",
	"chcp 65001 > $null",
}

// BuildCommand builds the command that runs script in a shell of goos
func BuildCommand(script, goos string) Command {
	if script == "" {
		script = DefaultBuildScript
	}

	if goos == "windows" {
		body := strings.Join(append(append([]string{}, powershellUTF8Prelude...), script), "; ")
		return Command{
			Name: "powershell.exe",
			Args: []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", body},
		}
	}

	return Command{
		Name: "sh",
		Args: []string{"-c", script},
	}
}

// UTF8Env returns environment entries asking child tools for UTF-8 output
func UTF8Env(goos string) []string {
	env := []string{"PYTHONIOENCODING=utf-8"}
	if goos != "windows" {
		env = append(env, "LANG=C.UTF-8")
	}
	return env
}
