// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Pair is a color with a light and a dark variant.
type Pair struct {
	Light string
	Dark  string
}

// Resolve picks the variant for the theme.
func (p Pair) Resolve(dark bool) lipgloss.Color {
	if dark {
		return lipgloss.Color(p.Dark)
	}
	return lipgloss.Color(p.Light)
}

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Emerald - shell prompt, success
var Emerald = Pair{Light: "#059669", Dark: "#34D399"}

// Cyan - chat prompt, assistant accent
var Cyan = Pair{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - spinner, mode badge
var Purple = Pair{Light: "#7C3AED", Dark: "#A78BFA"}

// Amber - notices
var Amber = Pair{Light: "#B45309", Dark: "#FBBF24"}

// Rose - errors
var Rose = Pair{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - main background
var Surface = Pair{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - status bar background
var SurfaceDim = Pair{Light: "#F5F5F5", Dark: "#181825"}

// TextPrimary - body text
var TextPrimary = Pair{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - labels
var TextSecondary = Pair{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - hints
var TextMuted = Pair{Light: "#9CA3AF", Dark: "#6C7086"}
