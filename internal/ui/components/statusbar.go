// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view pieces for the terminal UI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tomnagengast/tomterm/internal/model"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is one key hint shown on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom line: mode badge, status text and key hints.
type StatusBar struct {
	theme   *styles.Theme
	width   int
	mode    model.Mode
	loading bool
	status  string
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// SetTheme replaces the theme.
func (s *StatusBar) SetTheme(theme *styles.Theme) { s.theme = theme }

// SetWidth sets the total width.
func (s *StatusBar) SetWidth(width int) { s.width = width }

// SetMode sets the input mode shown in the badge.
func (s *StatusBar) SetMode(mode model.Mode) { s.mode = mode }

// SetLoading marks a request in flight.
func (s *StatusBar) SetLoading(loading bool) { s.loading = loading }

// SetStatus sets transient status text (e.g. "theme: light").
func (s *StatusBar) SetStatus(text string) { s.status = text }

// Shortcuts returns the hints for the current state.
func (s *StatusBar) Shortcuts() []Shortcut {
	switch {
	case s.loading:
		return []Shortcut{{"esc", "cancel"}, {"ctrl+c", "cancel"}}
	case s.mode == model.ModeChat:
		return []Shortcut{{"esc", "close"}, {"ctrl+t", "theme"}, {"pgup/pgdn", "scroll"}}
	default:
		return []Shortcut{{"tab", "complete"}, {"ctrl+t", "theme"}, {"ctrl+c", "quit"}}
	}
}

// View renders the bar. Hints are dropped first when the width is short.
func (s *StatusBar) View() string {
	t := s.theme
	badge := t.ModeShell.Render(strings.ToUpper(s.mode.String()))
	if s.mode == model.ModeChat {
		badge = t.ModeChat.Render(strings.ToUpper(s.mode.String()))
	}

	status := s.status
	if s.loading && status == "" {
		status = "waiting for response"
	}

	hints := make([]string, 0, 3)
	for _, sc := range s.Shortcuts() {
		hints = append(hints, t.ShortcutKey.Render(sc.Key)+" "+t.ShortcutDsc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	inner := s.width - t.StatusBar.GetHorizontalPadding()
	left := badge
	if status != "" {
		left += " " + t.StatusText.Render(status)
	}
	if s.width > 0 && lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		right = ""
		if lipgloss.Width(left) > inner {
			left = badge + " " + t.StatusText.Render(Truncate(status, inner-lipgloss.Width(badge)-1))
		}
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	if s.width > 0 {
		return t.StatusBar.Width(s.width).MaxWidth(s.width).Render(bar)
	}
	return t.StatusBar.Render(bar)
}

// Truncate shortens s to width display cells, ending with an ellipsis when
// cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
