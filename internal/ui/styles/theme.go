// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names.
const (
	Dark  = "dark"
	Light = "light"
)

// Theme holds the resolved styles for one variant.
type Theme struct {
	Name   string
	IsDark bool

	renderer *lipgloss.Renderer

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	Input    lipgloss.Style
	Output   lipgloss.Style
	System   lipgloss.Style
	Thinking lipgloss.Style
	Error    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	ShellPrompt lipgloss.Style
	ChatPrompt  lipgloss.Style
	InputText   lipgloss.Style
	Placeholder lipgloss.Style
	Spinner     lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar   lipgloss.Style
	ModeShell   lipgloss.Style
	ModeChat    lipgloss.Style
	StatusText  lipgloss.Style
	ShortcutKey lipgloss.Style
	ShortcutDsc lipgloss.Style
}

// NewTheme builds the named theme on renderer (nil means the default
// renderer). Unknown names resolve to dark.
func NewTheme(renderer *lipgloss.Renderer, name string) *Theme {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	dark := !strings.EqualFold(name, Light)
	t := &Theme{Name: Dark, IsDark: dark, renderer: renderer}
	if !dark {
		t.Name = Light
	}

	c := func(p Pair) lipgloss.Color { return p.Resolve(dark) }
	s := renderer.NewStyle

	t.Input = s().Foreground(c(TextPrimary)).Bold(true)
	t.Output = s().Foreground(c(TextPrimary))
	t.System = s().Foreground(c(Amber)).Italic(true)
	t.Thinking = s().Foreground(c(TextMuted)).Italic(true)
	t.Error = s().Foreground(c(Rose))

	t.ShellPrompt = s().Foreground(c(Emerald)).Bold(true)
	t.ChatPrompt = s().Foreground(c(Cyan)).Bold(true)
	t.InputText = s().Foreground(c(TextPrimary))
	t.Placeholder = s().Foreground(c(TextMuted))
	t.Spinner = s().Foreground(c(Purple))

	t.StatusBar = s().Background(c(SurfaceDim)).Foreground(c(TextSecondary)).Padding(0, 1)
	t.ModeShell = s().Background(c(Emerald)).Foreground(c(Surface)).Bold(true).Padding(0, 1)
	t.ModeChat = s().Background(c(Cyan)).Foreground(c(Surface)).Bold(true).Padding(0, 1)
	t.StatusText = s().Foreground(c(TextSecondary))
	t.ShortcutKey = s().Foreground(c(Purple)).Bold(true)
	t.ShortcutDsc = s().Foreground(c(TextMuted))
	return t
}

// Renderer returns the renderer the theme's styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// Toggle returns the opposite variant on the same renderer.
func (t *Theme) Toggle() *Theme {
	if t.IsDark {
		return NewTheme(t.renderer, Light)
	}
	return NewTheme(t.renderer, Dark)
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// DetectTheme returns the variant matching the terminal background of out.
func DetectTheme(out *termenv.Output) string {
	if out == nil || out.HasDarkBackground() {
		return Dark
	}
	return Light
}

// Resolve maps a configured theme name ("auto", "dark", "light") to a
// concrete variant, detecting the background for "auto".
func Resolve(name string, out *termenv.Output) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Dark:
		return Dark
	case Light:
		return Light
	default:
		return DetectTheme(out)
	}
}
