package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrWidgetNotFound = errors.New("widget not found")
	ErrWidgetExists   = errors.New("widget already exists")
)

var (
	keyInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	keyWhitespace   = regexp.MustCompile(`\s+`)
	keyDashes       = regexp.MustCompile(`-+`)
)

// now is swapped in tests
var now = time.Now

// SourceDir returns the widget's source directory under base
func (w Widget) SourceDir(base string) string {
	if filepath.IsAbs(w.Path) {
		return w.Path
	}
	return filepath.Join(base, w.Path)
}

// FindWidget returns the widget registered under key
func (s *Settings) FindWidget(key string) (*Widget, bool) {
	for i := range s.Widgets {
		if s.Widgets[i].Key == key {
			return &s.Widgets[i], true
		}
	}
	return nil, false
}

// WidgetKeys returns registered keys in registry order
func (s *Settings) WidgetKeys() []string {
	keys := make([]string, 0, len(s.Widgets))
	for _, w := range s.Widgets {
		keys = append(keys, w.Key)
	}
	return keys
}

// AddWidget registers a widget and selects it. An empty path defaults to the key.
func (s *Settings) AddWidget(w Widget) error {
	if w.Path == "" {
		w.Path = w.Key
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if _, ok := s.FindWidget(w.Key); ok {
		return fmt.Errorf("widget with key '%s': %w", w.Key, ErrWidgetExists)
	}

	s.Widgets = append(s.Widgets, w)
	if s.SelectedWidgets == nil {
		s.SelectedWidgets = map[string]bool{}
	}
	s.SelectedWidgets[w.Key] = true
	return nil
}

// RemoveWidget unregisters key and drops its selection
func (s *Settings) RemoveWidget(key string) error {
	for i := range s.Widgets {
		if s.Widgets[i].Key == key {
			s.Widgets = append(s.Widgets[:i], s.Widgets[i+1:]...)
			delete(s.SelectedWidgets, key)
			return nil
		}
	}
	return fmt.Errorf("widget with key '%s': %w", key, ErrWidgetNotFound)
}

// UpdateWidget replaces name and path of key. Empty values keep the current ones.
func (s *Settings) UpdateWidget(key, name, path string) error {
	w, ok := s.FindWidget(key)
	if !ok {
		return fmt.Errorf("widget with key '%s': %w", key, ErrWidgetNotFound)
	}
	if name != "" {
		w.Name = name
	}
	if path != "" {
		w.Path = path
	}
	return nil
}

// Select marks keys as selected. Nothing changes if any key is unknown.
func (s *Settings) Select(keys ...string) error {
	return s.setSelected(true, keys)
}

// Deselect clears the selection of keys. Nothing changes if any key is unknown.
func (s *Settings) Deselect(keys ...string) error {
	return s.setSelected(false, keys)
}

func (s *Settings) setSelected(selected bool, keys []string) error {
	for _, key := range keys {
		if _, ok := s.FindWidget(key); !ok {
			return fmt.Errorf("widget with key '%s': %w", key, ErrWidgetNotFound)
		}
	}
	if s.SelectedWidgets == nil {
		s.SelectedWidgets = map[string]bool{}
	}
	for _, key := range keys {
		s.SelectedWidgets[key] = selected
	}
	return nil
}

func (s *Settings) SelectAll() {
	_ = s.setSelected(true, s.WidgetKeys())
}

func (s *Settings) DeselectAll() {
	_ = s.setSelected(false, s.WidgetKeys())
}

// Selected returns the selected widgets in registry order
func (s *Settings) Selected() []Widget {
	var out []Widget
	for _, w := range s.Widgets {
		if s.SelectedWidgets[w.Key] {
			out = append(out, w)
		}
	}
	return out
}

// SanitizeKey turns a display name into a key: lower case, only [a-z0-9-],
// whitespace runs become a single dash, no leading or trailing dashes.
func SanitizeKey(name string) string {
	key := strings.ToLower(name)
	key = keyInvalidChars.ReplaceAllString(key, "")
	key = strings.TrimSpace(key)
	key = keyWhitespace.ReplaceAllString(key, "-")
	key = keyDashes.ReplaceAllString(key, "-")
	return strings.Trim(key, "-")
}

// GenerateKey derives a key from name that is not yet registered,
// appending -1, -2, ... on collision.
func (s *Settings) GenerateKey(name string) string {
	return uniqueKey(name, "widget", func(key string) bool {
		_, taken := s.FindWidget(key)
		return taken
	})
}

// MoveWidget shifts key by delta positions in the registry, clamped to the
// ends. Registry order is build order.
func (s *Settings) MoveWidget(key string, delta int) error {
	i := s.WidgetIndex(key)
	if i < 0 {
		return fmt.Errorf("widget with key '%s': %w", key, ErrWidgetNotFound)
	}
	move(s.Widgets, i, delta)
	return nil
}

// WidgetIndex returns the zero-based registry position of key, or -1
func (s *Settings) WidgetIndex(key string) int {
	for i := range s.Widgets {
		if s.Widgets[i].Key == key {
			return i
		}
	}
	return -1
}

func uniqueKey(name, fallback string, taken func(string) bool) string {
	base := SanitizeKey(name)
	if base == "" {
		base = fmt.Sprintf("%s-%d", fallback, now().UnixMilli())
	}

	key := base
	for i := 1; taken(key); i++ {
		key = fmt.Sprintf("%s-%d", base, i)
	}
	return key
}

// move shifts list[from] by delta places, keeping the order of the others
func move[T any](list []T, from, delta int) {
	to := min(max(from+delta, 0), len(list)-1)
	if to == from {
		return
	}
	item := list[from]
	if to < from {
		copy(list[to+1:from+1], list[to:from])
	} else {
		copy(list[from:to], list[from+1:to+1])
	}
	list[to] = item
}
