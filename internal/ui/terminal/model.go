// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/session"
	"github.com/tomnagengast/tomterm/internal/ui/components"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
)

// Store persists the theme choice and submitted lines.
type Store interface {
	SetTheme(ctx context.Context, theme string) error
	AddHistory(ctx context.Context, line string) error
}

// Options configures a Model.
type Options struct {
	Session   *session.Session
	Completer *commands.Completer
	Theme     *styles.Theme

	// Store is optional.
	Store Store

	// History seeds Up/Down recall, oldest first.
	History []string

	// Markdown renders assistant replies with glamour.
	Markdown bool

	// WordWrap caps the rendering width; 0 uses the window width.
	WordWrap int
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the terminal view.
type Model struct {
	ctx       context.Context
	sess      *session.Session
	completer *commands.Completer
	store     Store
	feed      *feed
	unsub     func()

	// Latest state
	snap session.Snapshot

	// Styling
	theme    *styles.Theme
	markdown *markdownRenderer
	wordWrap int

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	statusBar *components.StatusBar
	keyMap    KeyMap

	// Input recall
	history    []string
	historyPos int
	draft      string

	quitting bool
}

// New creates the view and subscribes it to the session.
func New(ctx context.Context, opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(nil, styles.Dark)
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type 'help'"
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:       ctx,
		sess:      opts.Session,
		completer: opts.Completer,
		store:     opts.Store,
		feed:      newFeed(),
		theme:     theme,
		wordWrap:  opts.WordWrap,
		viewport:  viewport.New(80, 20),
		input:     ti,
		spinner:   sp,
		statusBar: components.NewStatusBar(theme),
		keyMap:    DefaultKeyMap(),
		history:   append([]string(nil), opts.History...),
	}
	m.historyPos = len(m.history)
	if opts.Markdown {
		m.markdown = newMarkdownRenderer()
	}
	m.applyTheme(theme)

	if m.sess != nil {
		m.snap = m.sess.Snapshot()
		m.unsub = m.sess.Subscribe(m.feed.push)
	}
	return m
}

// Init starts listening for session updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.feed.wait())
}

// Snapshot returns the state the view last rendered.
func (m *Model) Snapshot() session.Snapshot {
	return m.snap
}

// Theme returns the active theme.
func (m *Model) Theme() *styles.Theme {
	return m.theme
}

// Input returns the current input line.
func (m *Model) Input() string {
	return m.input.Value()
}

// Release unsubscribes from the session. Call it after the program exits.
func (m *Model) Release() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
	m.feed.close()
}

func (m *Model) applyTheme(theme *styles.Theme) {
	m.theme = theme
	m.input.PromptStyle = theme.ShellPrompt
	m.input.TextStyle = theme.InputText
	m.input.PlaceholderStyle = theme.Placeholder
	m.spinner.Style = theme.Spinner
	m.statusBar.SetTheme(theme)
}
