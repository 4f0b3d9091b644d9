package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrAppNotFound = errors.New("app not found")
	ErrAppExists   = errors.New("app already exists")
)

// Dir returns the app's package directory in OS form
func (a App) Dir() string {
	return filepath.FromSlash(a.Path)
}

func (s *Settings) FindApp(key string) (*App, bool) {
	for i := range s.Apps {
		if s.Apps[i].Key == key {
			return &s.Apps[i], true
		}
	}
	return nil, false
}

// AppKeys returns registered app keys in registry order
func (s *Settings) AppKeys() []string {
	keys := make([]string, 0, len(s.Apps))
	for _, a := range s.Apps {
		keys = append(keys, a.Key)
	}
	return keys
}

// AddApp registers an app and selects it
func (s *Settings) AddApp(a App) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := s.FindApp(a.Key); ok {
		return fmt.Errorf("app with key '%s': %w", a.Key, ErrAppExists)
	}

	s.Apps = append(s.Apps, a)
	if s.SelectedApps == nil {
		s.SelectedApps = map[string]bool{}
	}
	s.SelectedApps[a.Key] = true
	return nil
}

// RemoveApp unregisters key and drops its selection
func (s *Settings) RemoveApp(key string) error {
	for i := range s.Apps {
		if s.Apps[i].Key == key {
			s.Apps = append(s.Apps[:i], s.Apps[i+1:]...)
			delete(s.SelectedApps, key)
			return nil
		}
	}
	return fmt.Errorf("app with key '%s': %w", key, ErrAppNotFound)
}

// UpdateApp replaces name and path of key. Empty values keep the current ones.
func (s *Settings) UpdateApp(key, name, path string) error {
	a, ok := s.FindApp(key)
	if !ok {
		return fmt.Errorf("app with key '%s': %w", key, ErrAppNotFound)
	}
	if name != "" {
		a.Name = name
	}
	if path != "" {
		a.Path = path
	}
	return nil
}

// SelectApps marks apps as deployment targets. Nothing changes if any key is unknown.
func (s *Settings) SelectApps(keys ...string) error {
	return s.setAppsSelected(true, keys)
}

// DeselectApps is the inverse of SelectApps
func (s *Settings) DeselectApps(keys ...string) error {
	return s.setAppsSelected(false, keys)
}

func (s *Settings) setAppsSelected(selected bool, keys []string) error {
	for _, key := range keys {
		if _, ok := s.FindApp(key); !ok {
			return fmt.Errorf("app with key '%s': %w", key, ErrAppNotFound)
		}
	}
	if s.SelectedApps == nil {
		s.SelectedApps = map[string]bool{}
	}
	for _, key := range keys {
		s.SelectedApps[key] = selected
	}
	return nil
}

// TargetApps returns the selected apps in registry order
func (s *Settings) TargetApps() []App {
	var out []App
	for _, a := range s.Apps {
		if s.SelectedApps[a.Key] {
			out = append(out, a)
		}
	}
	return out
}

// MoveApp shifts key by delta positions in the registry, clamped to the ends
func (s *Settings) MoveApp(key string, delta int) error {
	i := s.AppIndex(key)
	if i < 0 {
		return fmt.Errorf("app with key '%s': %w", key, ErrAppNotFound)
	}
	move(s.Apps, i, delta)
	return nil
}

// AppIndex returns the zero-based registry position of key, or -1
func (s *Settings) AppIndex(key string) int {
	for i := range s.Apps {
		if s.Apps[i].Key == key {
			return i
		}
	}
	return -1
}

// GenerateAppKey derives an unused app key from name
func (s *Settings) GenerateAppKey(name string) string {
	return uniqueKey(name, "app", func(key string) bool {
		_, taken := s.FindApp(key)
		return taken
	})
}
