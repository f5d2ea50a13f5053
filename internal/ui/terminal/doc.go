// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package terminal provides the full-screen Bubble Tea view of a session.

The Model owns no conversation state. It renders the latest
session.Snapshot and forwards keystrokes to the session:

  - Enter submits the input line
  - Esc cancels a pending chat request, otherwise closes the session
  - Ctrl+C cancels a pending request; when idle in the shell it quits
  - PgUp/PgDn scroll the transcript
  - Tab completes command names and cat operands
  - Ctrl+T toggles the light/dark theme

Snapshots reach the Bubble Tea loop through a latest-wins channel, so a
slow renderer never blocks the session and never shows stale state.

# Usage

	sess := session.New(ctx, session.Options{Registry: reg, Chat: client})
	m := terminal.New(ctx, terminal.Options{Session: sess, Theme: theme})
	sess.Open()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
*/
package terminal
