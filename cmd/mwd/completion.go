package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/GG-O-BP/mendix-multi-widget-diployer/internal/config"
)

const (
	completionFlag  = "--generate-shell-completion"
	maxHyphenPrefix = 2
)

// completeWidgetKeys suggests registered widget keys that are not already on
// the command line, or flag names when the current word starts with '-'.
func completeWidgetKeys(_ context.Context, cmd *cli.Command) {
	completeRegistryKeys(cmd, func(settings *config.Settings) []completionCandidate {
		candidates := make([]completionCandidate, 0, len(settings.Widgets))
		for _, widget := range settings.Widgets {
			candidates = append(candidates, completionCandidate{key: widget.Key, name: widget.Name})
		}
		return candidates
	})
}

// completeAppKeys is completeWidgetKeys for the app registry
func completeAppKeys(_ context.Context, cmd *cli.Command) {
	completeRegistryKeys(cmd, func(settings *config.Settings) []completionCandidate {
		candidates := make([]completionCandidate, 0, len(settings.Apps))
		for _, app := range settings.Apps {
			candidates = append(candidates, completionCandidate{key: app.Key, name: app.Name})
		}
		return candidates
	})
}

type completionCandidate struct {
	key  string
	name string
}

func completeRegistryKeys(cmd *cli.Command, candidatesOf func(*config.Settings) []completionCandidate) {
	current, previous := completionArgsFromCommand(cmd)

	if strings.HasPrefix(current, "-") {
		completeFlagSuggestions(cmd, current)
		return
	}

	settings, _, err := loadSettings(cmd)
	if err != nil {
		return
	}
	candidates := candidatesOf(settings)

	used := make(map[string]struct{}, len(previous)+1)
	for _, arg := range previous {
		used[arg] = struct{}{}
	}

	// The shell's trailing empty word does not reach us, so a complete key
	// in the last position was already typed and is not a prefix.
	for _, c := range candidates {
		if c.key == current {
			used[current] = struct{}{}
			current = ""
			break
		}
	}

	w := commandWriter(cmd)
	for _, c := range candidates {
		if _, done := used[c.key]; done {
			continue
		}
		if current != "" && !strings.HasPrefix(c.key, current) {
			continue
		}
		if c.name != "" && c.name != c.key {
			fmt.Fprintf(w, "%s:%s\n", c.key, c.name)
		} else {
			fmt.Fprintln(w, c.key)
		}
	}
}

func completionArgsFromCommand(cmd *cli.Command) (current string, previous []string) {
	if cmd == nil {
		return "", nil
	}

	if cmdArgs := cmd.Args(); cmdArgs != nil {
		args := filterCompletionArgs(cmdArgs.Slice())
		if len(args) == 0 {
			return "", nil
		}

		current = args[len(args)-1]
		if len(args) > 1 {
			previous = append([]string(nil), args[:len(args)-1]...)
		}

		return current, previous
	}

	return "", nil
}

func filterCompletionArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}

	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == completionFlag {
			continue
		}
		filtered = append(filtered, arg)
	}

	return filtered
}

func completeFlagSuggestions(cmd *cli.Command, current string) bool {
	if cmd == nil {
		return false
	}

	writer := commandWriter(cmd)
	trimmed, doubleDash := strings.TrimLeft(current, "-"), strings.HasPrefix(current, "--")

	seen := make(map[string]struct{})
	emitted := false

	for _, flag := range cmd.Flags {
		if visibility, ok := flag.(interface{ IsVisible() bool }); ok && !visibility.IsVisible() {
			continue
		}

		match := selectMatchingName(flag.Names(), trimmed, doubleDash)
		if match == "" {
			continue
		}

		completion := formatCompletion(match)
		if _, exists := seen[completion]; exists {
			continue
		}

		seen[completion] = struct{}{}
		fmt.Fprintln(writer, completion)
		emitted = true
	}

	return emitted
}

func selectMatchingName(names []string, trimmed string, doubleDash bool) string {
	for _, candidate := range names {
		name := strings.TrimSpace(candidate)
		if name == "" {
			continue
		}

		if doubleDash && utf8.RuneCountInString(name) == 1 {
			continue
		}

		if trimmed != "" && !strings.HasPrefix(name, trimmed) {
			continue
		}

		if trimmed == name {
			continue
		}

		return name
	}

	return ""
}

func formatCompletion(name string) string {
	count := utf8.RuneCountInString(name)
	if count > maxHyphenPrefix {
		count = maxHyphenPrefix
	}
	return strings.Repeat("-", count) + name
}
