// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomnagengast/tomterm/internal/model"
)

// View renders the transcript, the input line and the status bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderTranscript()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInputLine(),
		m.statusBar.View(),
	)
}

func (m *Model) renderInputLine() string {
	if m.snap.Loading {
		return m.spinner.View() + " " + m.input.View()
	}
	prompt := m.theme.ShellPrompt.Render(model.ShellPrompt)
	if m.snap.Mode == model.ModeChat {
		prompt = m.theme.ChatPrompt.Render(model.ChatPrompt)
	}
	return prompt + m.input.View()
}

// contentWidth is the width transcript text wraps at.
func (m *Model) contentWidth() int {
	w := m.width
	if m.wordWrap > 0 && (w == 0 || m.wordWrap < w) {
		w = m.wordWrap
	}
	return w
}

// renderTranscript renders every message of the latest snapshot.
func (m *Model) renderTranscript() string {
	msgs := m.snap.History
	width := m.contentWidth()
	blocks := make([]string, 0, len(msgs))

	inChat := false
	for i, msg := range msgs {
		switch msg.Kind {
		case model.KindInput:
			inChat = strings.HasPrefix(msg.Content, model.ChatPrompt)
			blocks = append(blocks, m.renderInput(msg.Content, width))

		case model.KindOutput:
			streaming := m.snap.Loading && i == len(msgs)-1
			blocks = append(blocks, m.renderOutput(i, msg.Content, inChat && !streaming, width))

		case model.KindSystem:
			blocks = append(blocks, wrap(m.theme.System, msg.Content, width))

		case model.KindThinking:
			blocks = append(blocks, m.spinner.View()+" "+m.theme.Thinking.Render(msg.Content))
		}
	}
	return strings.Join(blocks, "\n")
}

func (m *Model) renderInput(content string, width int) string {
	prompt, rest := model.ShellPrompt, content
	style := m.theme.ShellPrompt
	if strings.HasPrefix(content, model.ChatPrompt) {
		prompt, style = model.ChatPrompt, m.theme.ChatPrompt
	}
	rest = strings.TrimPrefix(content, prompt)
	return style.Render(prompt) + wrap(m.theme.Input, rest, max(width-len(prompt), 0))
}

// renderOutput renders command output or an assistant reply. Completed
// replies go through the markdown renderer when it is enabled.
func (m *Model) renderOutput(index int, content string, markdown bool, width int) string {
	if strings.HasPrefix(content, "Error: ") {
		return wrap(m.theme.Error, content, width)
	}
	if markdown && m.markdown != nil {
		if out, ok := m.markdown.render(index, content, m.theme.GlamourStyle(), width); ok {
			return out
		}
	}
	return wrap(m.theme.Output, content, width)
}

// wrap renders text with style, word-wrapped to width when width > 0.
func wrap(style lipgloss.Style, text string, width int) string {
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}
