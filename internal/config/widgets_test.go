package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T, keys ...string) *Settings {
	t.Helper()
	s := Default()
	for _, k := range keys {
		require.NoError(t, s.AddWidget(Widget{Key: k, Name: k}))
	}
	return s
}

func TestAddWidget(t *testing.T) {
	s := newTestSettings(t, "badge")

	err := s.AddWidget(Widget{Key: "badge", Name: "Other"})

	assert.True(t, errors.Is(err, ErrWidgetExists))
	assert.Len(t, s.Widgets, 1)
	assert.True(t, s.SelectedWidgets["badge"], "new widgets start selected")

	err = s.AddWidget(Widget{Key: "chart"})
	assert.ErrorContains(t, err, "name is required")
}

func TestRemoveWidget(t *testing.T) {
	s := newTestSettings(t, "a", "b", "c")

	require.NoError(t, s.RemoveWidget("b"))

	assert.Equal(t, []string{"a", "c"}, s.WidgetKeys())
	_, selected := s.SelectedWidgets["b"]
	assert.False(t, selected)

	err := s.RemoveWidget("b")
	assert.True(t, errors.Is(err, ErrWidgetNotFound))
	assert.ErrorContains(t, err, "widget with key 'b'")
}

func TestUpdateWidget(t *testing.T) {
	s := newTestSettings(t, "badge")

	require.NoError(t, s.UpdateWidget("badge", "Status Badge", ""))

	w, ok := s.FindWidget("badge")
	require.True(t, ok)
	assert.Equal(t, "Status Badge", w.Name)
	assert.Equal(t, "badge", w.Path)

	require.NoError(t, s.UpdateWidget("badge", "", "widgets/badge"))
	assert.Equal(t, "widgets/badge", w.Path)

	assert.True(t, errors.Is(s.UpdateWidget("missing", "x", "y"), ErrWidgetNotFound))
}

func TestSelection(t *testing.T) {
	s := newTestSettings(t, "a", "b", "c")

	s.DeselectAll()
	assert.Empty(t, s.Selected())

	require.NoError(t, s.Select("c", "a"))
	var keys []string
	for _, w := range s.Selected() {
		keys = append(keys, w.Key)
	}
	assert.Equal(t, []string{"a", "c"}, keys, "registry order, not selection order")

	err := s.Deselect("a", "nope")
	assert.True(t, errors.Is(err, ErrWidgetNotFound))
	assert.True(t, s.SelectedWidgets["a"], "unknown key leaves selection untouched")

	s.SelectAll()
	assert.Len(t, s.Selected(), 3)
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Badge", "badge"},
		{"  Status   Badge  ", "status-badge"},
		{"Chart (v2)!", "chart-v2"},
		{"--a -- b--", "a-b"},
		{"배지 위젯", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeKey(tt.in))
		})
	}
}

func TestGenerateKey(t *testing.T) {
	s := newTestSettings(t, "badge", "badge-1")

	assert.Equal(t, "badge-2", s.GenerateKey("Badge"))
	assert.Equal(t, "chart", s.GenerateKey("Chart"))

	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return time.UnixMilli(1700000000000) }

	assert.Equal(t, "widget-1700000000000", s.GenerateKey("위젯"))
}

func TestWidgetSourceDir(t *testing.T) {
	base := filepath.Join("home", "widgets")

	assert.Equal(t, filepath.Join(base, "badge"), Widget{Path: "badge"}.SourceDir(base))

	abs, err := filepath.Abs("chart")
	require.NoError(t, err)
	assert.Equal(t, abs, Widget{Path: abs}.SourceDir(base))
}

func TestMoveWidget(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		delta int
		want  []string
	}{
		{name: "up one", key: "c", delta: -1, want: []string{"a", "c", "b", "d"}},
		{name: "down one", key: "a", delta: 1, want: []string{"b", "a", "c", "d"}},
		{name: "down two", key: "a", delta: 2, want: []string{"b", "c", "a", "d"}},
		{name: "up past the top", key: "c", delta: -10, want: []string{"c", "a", "b", "d"}},
		{name: "down past the bottom", key: "b", delta: 10, want: []string{"a", "c", "d", "b"}},
		{name: "first stays first", key: "a", delta: -1, want: []string{"a", "b", "c", "d"}},
		{name: "zero", key: "b", delta: 0, want: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSettings(t, "a", "b", "c", "d")

			require.NoError(t, s.MoveWidget(tt.key, tt.delta))

			assert.Equal(t, tt.want, s.WidgetKeys())
		})
	}
}

func TestMoveWidget_KeepsSelectionAndBuildOrder(t *testing.T) {
	s := newTestSettings(t, "a", "b", "c")
	require.NoError(t, s.Deselect("b"))

	require.NoError(t, s.MoveWidget("c", -2))

	var keys []string
	for _, w := range s.Selected() {
		keys = append(keys, w.Key)
	}
	assert.Equal(t, []string{"c", "a"}, keys)
	assert.Equal(t, 0, s.WidgetIndex("c"))
	assert.Equal(t, -1, s.WidgetIndex("missing"))

	err := s.MoveWidget("missing", 1)
	assert.True(t, errors.Is(err, ErrWidgetNotFound))
}
