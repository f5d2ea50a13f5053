// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomnagengast/tomterm/internal/model"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hell…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestStatusBarShortcuts(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme(nil, styles.Dark))
	if got := bar.Shortcuts()[0].Key; got != "tab" {
		t.Errorf("shell first hint = %q", got)
	}
	bar.SetMode(model.ModeChat)
	if got := bar.Shortcuts()[0].Desc; got != "close" {
		t.Errorf("chat first hint = %q", got)
	}
	bar.SetLoading(true)
	if got := bar.Shortcuts()[0].Desc; got != "cancel" {
		t.Errorf("loading first hint = %q", got)
	}
}

func TestStatusBarView(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme(nil, styles.Light))
	bar.SetWidth(80)
	bar.SetMode(model.ModeChat)
	view := bar.View()
	if !strings.Contains(view, "CHAT") {
		t.Errorf("view missing mode badge: %q", view)
	}
	if w := lipgloss.Width(view); w > 80 {
		t.Errorf("view width = %d, want <= 80", w)
	}

	bar.SetWidth(12)
	bar.SetStatus("a very long status message")
	if w := lipgloss.Width(bar.View()); w > 12 {
		t.Errorf("narrow view width = %d, want <= 12", w)
	}
}
