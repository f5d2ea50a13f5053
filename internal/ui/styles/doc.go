// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the terminal UI.
//
// Colors are defined as light/dark pairs. A Theme resolves every pair for
// one variant and binds the styles to a lipgloss renderer, so an SSH session
// renders with its own client's color profile rather than the server's.
//
// Usage:
//
//	theme := styles.NewTheme(nil, styles.DetectTheme(termenv.DefaultOutput()))
//	fmt.Println(theme.Output.Render("hello"))
//	theme = theme.Toggle()
package styles
