// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/model"
	"github.com/tomnagengast/tomterm/internal/session"
)

// Update handles Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case SnapshotMsg:
		return m, m.applySnapshot(session.Snapshot(msg))

	case spinner.TickMsg:
		if !m.snap.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applySnapshot renders new session state. The program quits when the
// session closes.
func (m *Model) applySnapshot(snap session.Snapshot) tea.Cmd {
	wasOpen, wasLoading := m.snap.Open, m.snap.Loading
	m.snap = snap

	if wasOpen && !snap.Open {
		return m.quit()
	}

	m.statusBar.SetMode(snap.Mode)
	m.statusBar.SetLoading(snap.Loading)
	if snap.Mode == model.ModeChat {
		m.input.PromptStyle = m.theme.ChatPrompt
	} else {
		m.input.PromptStyle = m.theme.ShellPrompt
	}
	m.refresh()

	cmds := []tea.Cmd{m.feed.wait()}
	if snap.Loading && !wasLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Interrupt):
		// The rendered snapshot may lag a submit that is already pending.
		mode, loading := m.sess.State()
		if loading {
			m.sess.Cancel()
			return m, nil
		}
		if mode == model.ModeShell {
			return m, m.quit()
		}
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keyMap.Escape):
		m.sess.Escape()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleTheme):
		return m, m.toggleTheme()

	case key.Matches(msg, m.keyMap.Complete):
		if m.snap.Mode == model.ModeShell {
			m.complete()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.HistoryPrev):
		m.recall(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.HistoryNext):
		m.recall(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input line to the session. The line is kept while a
// request is pending, since the session would ignore it.
func (m *Model) submit() tea.Cmd {
	if _, loading := m.sess.State(); loading {
		return nil
	}
	line := m.input.Value()
	m.input.Reset()
	m.draft = ""
	m.statusBar.SetStatus("")

	if strings.TrimSpace(line) != "" {
		if n := len(m.history); n == 0 || m.history[n-1] != line {
			m.history = append(m.history, line)
		}
		if m.store != nil {
			if err := m.store.AddHistory(m.ctx, line); err != nil {
				logx.Ctx(m.ctx).Warn("history save failed", "err", err)
			}
		}
	}
	m.historyPos = len(m.history)

	m.sess.Submit(line)
	return nil
}

func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true
	if m.sess != nil {
		m.sess.Close()
	}
	m.Release()
	return tea.Quit
}

func (m *Model) toggleTheme() tea.Cmd {
	m.applyTheme(m.theme.Toggle())
	if m.snap.Mode == model.ModeChat {
		m.input.PromptStyle = m.theme.ChatPrompt
	}
	if m.markdown != nil {
		m.markdown.reset()
	}
	if m.store != nil {
		if err := m.store.SetTheme(m.ctx, m.theme.Name); err != nil {
			logx.Ctx(m.ctx).Warn("theme save failed", "err", err)
		}
	}
	m.statusBar.SetStatus("theme: " + m.theme.Name)
	m.refresh()
	return nil
}

// complete applies Tab completion to the input line. A single candidate is
// accepted; several fill their common prefix and are listed in the status.
func (m *Model) complete() {
	if m.completer == nil {
		return
	}
	candidates := m.completer.Complete(m.input.Value())
	switch len(candidates) {
	case 0:
		return
	case 1:
		m.input.SetValue(candidates[0].Value)
	default:
		if prefix := commands.CommonPrefix(candidates); len(prefix) > len(strings.TrimLeft(m.input.Value(), " \t")) {
			m.input.SetValue(prefix)
		}
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Display)
		}
		m.statusBar.SetStatus(strings.Join(names, "  "))
	}
	m.input.CursorEnd()
}

// recall moves through submitted lines; dir is -1 for older, 1 for newer.
func (m *Model) recall(dir int) {
	if len(m.history) == 0 {
		return
	}
	if m.historyPos == len(m.history) {
		m.draft = m.input.Value()
	}
	pos := m.historyPos + dir
	if pos < 0 || pos > len(m.history) {
		return
	}
	m.historyPos = pos
	if pos == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[pos])
	}
	m.input.CursorEnd()
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize lays out the viewport above the input and status lines.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	m.input.Width = max(width-len(model.ChatPrompt)-2, 1)
	m.statusBar.SetWidth(width)
	m.ready = true
	m.refresh()
}

// refresh re-renders the transcript, following the bottom when the user
// has not scrolled up.
func (m *Model) refresh() {
	follow := m.viewport.AtBottom() || m.viewport.TotalLineCount() <= m.viewport.Height
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}
