// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantDark bool
	}{
		{"dark", Dark, true},
		{"light", Light, false},
		{"LIGHT", Light, false},
		{"unknown", Dark, true},
		{"", Dark, true},
	}
	for _, tt := range tests {
		theme := NewTheme(nil, tt.name)
		if theme.Name != tt.wantName || theme.IsDark != tt.wantDark {
			t.Errorf("NewTheme(%q) = %s/%v, want %s/%v", tt.name, theme.Name, theme.IsDark, tt.wantName, tt.wantDark)
		}
	}
}

func TestToggle(t *testing.T) {
	r := lipgloss.NewRenderer(nil)
	theme := NewTheme(r, Dark)
	light := theme.Toggle()
	if light.IsDark || light.Name != Light {
		t.Errorf("Toggle from dark = %s", light.Name)
	}
	if light.Renderer() != r {
		t.Error("Toggle should keep the renderer")
	}
	if light.GlamourStyle() != "light" || theme.GlamourStyle() != "dark" {
		t.Error("glamour style should follow the variant")
	}
	if back := light.Toggle(); !back.IsDark {
		t.Error("Toggle from light should be dark")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("light", nil); got != Light {
		t.Errorf("Resolve(light) = %s", got)
	}
	if got := Resolve(" Dark ", nil); got != Dark {
		t.Errorf("Resolve(Dark) = %s", got)
	}
	if got := Resolve("auto", nil); got != Dark {
		t.Errorf("Resolve(auto) with no output = %s, want dark", got)
	}
}

func TestPairResolve(t *testing.T) {
	p := Pair{Light: "#111111", Dark: "#eeeeee"}
	if p.Resolve(true) != lipgloss.Color("#eeeeee") {
		t.Error("dark variant")
	}
	if p.Resolve(false) != lipgloss.Color("#111111") {
		t.Error("light variant")
	}
}
