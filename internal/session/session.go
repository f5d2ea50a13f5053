// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the terminal session state machine.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"pkt.systems/pslog"

	"github.com/tomnagengast/tomterm/internal/chat"
	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/model"
)

// System notices.
const (
	ChatWelcome     = "Chatting with Tom's AI agent. Type 'exit' to return to the shell."
	ChatExit        = "Exiting chat mode."
	RequestCancel   = "Request cancelled."
	CancelledMarker = " [cancelled]"
	InterruptMarker = "^C"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Chatter sends conversation history to the backend.
type Chatter interface {
	Send(ctx context.Context, turns []model.ChatTurn, onChunk chat.ChunkFunc) (string, error)
	Streaming() bool
}

// ShellRunner runs a command on the remote shell endpoint.
type ShellRunner interface {
	Run(ctx context.Context, command string, onOutput chat.ChunkFunc) (string, error)
}

// Options configures a Session.
type Options struct {
	// Registry is the local command set (default: commands.NewRegistry())
	Registry *commands.Registry

	// Chat is the chat backend; required for chat mode
	Chat Chatter

	// Shell, when set, receives commands the registry does not know
	Shell ShellRunner
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	ID          string
	Version     uint64
	History     []model.Message
	ChatHistory []model.ChatTurn
	Mode        model.Mode
	Loading     bool
	Open        bool
}

// Prompt returns the prompt for the current mode.
func (s Snapshot) Prompt() string {
	return s.Mode.Prompt()
}

// =============================================================================
// SESSION
// =============================================================================

type requestKind int

const (
	requestChat requestKind = iota
	requestShell
)

// Session is one open instance of the terminal.
//
// All state is guarded by mu. Subscribers are called outside mu, serialized
// by pubMu, and must not call mutating Session methods synchronously.
type Session struct {
	mu sync.Mutex

	id       string
	ctx      context.Context
	registry *commands.Registry
	chat     Chatter
	shell    ShellRunner
	fold     cases.Caser

	transcript model.Transcript
	history    model.ChatHistory
	mode       model.Mode
	open       bool

	// In-flight request. loading is true exactly when cancel is non-nil.
	loading bool
	cancel  context.CancelFunc
	kind    requestKind
	mark    int
	turn    uint64

	inflight sync.WaitGroup

	version uint64
	subs    map[int]func(Snapshot)
	nextSub int

	pubMu     sync.Mutex
	published uint64
}

// New creates a closed session. Call Open to start it.
func New(ctx context.Context, opts Options) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		ctx:      logx.ContextWithSession(ctx, id),
		registry: opts.Registry,
		chat:     opts.Chat,
		shell:    opts.Shell,
		fold:     cases.Fold(),
		subs:     make(map[int]func(Snapshot)),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) log() pslog.Logger {
	return logx.Ctx(s.ctx)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State reports the current mode and whether a request is pending without
// copying the history.
func (s *Session) State() (mode model.Mode, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.loading
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          s.id,
		Version:     s.version,
		History:     s.transcript.Messages(),
		ChatHistory: s.history.Turns(),
		Mode:        s.mode,
		Loading:     s.loading,
		Open:        s.open,
	}
}

// Subscribe registers fn to receive a Snapshot after every mutation.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Wait blocks until no request goroutine is running.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// update runs fn under mu and, when it reports a change, publishes the new
// state to subscribers.
func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if snap.Version <= s.published {
		return
	}
	s.published = snap.Version
	for _, sub := range subs {
		sub(snap)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Open starts the terminal from the initial state and prints the welcome
// banner. Opening an open session is a no-op.
func (s *Session) Open() {
	s.update(func() bool {
		if s.open {
			return false
		}
		s.resetLocked()
		s.open = true
		if res := s.registry.Execute("welcome"); res.Output != "" {
			s.transcript.Append(model.NewOutput(res.Output))
		}
		s.log().Info("terminal opened")
		return true
	})
}

// Close terminates the terminal, aborting any in-flight request, and resets
// every piece of state so nothing leaks into the next Open.
func (s *Session) Close() {
	s.update(func() bool {
		if !s.open && !s.loading {
			return false
		}
		s.closeLocked()
		return true
	})
}

func (s *Session) closeLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.resetLocked()
	s.open = false
	s.log().Info("terminal closed")
}

func (s *Session) resetLocked() {
	s.turn++
	s.cancel = nil
	s.loading = false
	s.mode = model.ModeShell
	s.transcript.Clear()
	s.history.Reset()
}

// =============================================================================
// INPUT
// =============================================================================

// Submit handles an Enter press with the given input line. It is a no-op
// while a request is outstanding, when the terminal is closed, or when the
// input is blank.
func (s *Session) Submit(input string) {
	s.update(func() bool {
		if !s.open || s.loading {
			return false
		}
		if strings.TrimSpace(input) == "" {
			return false
		}

		s.transcript.Append(model.NewInput(s.mode, input))
		if s.mode == model.ModeChat {
			s.submitChatLocked(input)
		} else {
			s.submitShellLocked(input)
		}
		return true
	})
}

// Cancel aborts the in-flight request. When it returns, Loading is false.
func (s *Session) Cancel() {
	s.update(func() bool {
		if !s.loading {
			return false
		}
		s.cancelLocked()
		return true
	})
}

// Escape cancels the in-flight chat request, or closes the terminal when
// there is none.
func (s *Session) Escape() {
	s.update(func() bool {
		if s.loading && s.mode == model.ModeChat {
			s.cancelLocked()
			return true
		}
		if !s.open && !s.loading {
			return false
		}
		s.closeLocked()
		return true
	})
}

func (s *Session) submitShellLocked(input string) {
	p := commands.Parse(input)
	res := s.registry.Run(p.Name, p.Args)
	s.log().Debug("shell command", "command", p.Name, "found", res.Found)

	switch res.Action {
	case commands.ActionEnterChat:
		s.enterChatLocked()
		return
	case commands.ActionClear:
		s.transcript.Clear()
		return
	case commands.ActionClose:
		s.closeLocked()
		return
	}

	if !res.Found && s.shell != nil {
		s.startShellLocked(strings.TrimSpace(input))
		return
	}
	if res.Output != "" {
		s.transcript.Append(model.NewOutput(res.Output))
	}
}

func (s *Session) enterChatLocked() {
	s.mode = model.ModeChat
	s.history.Reset()
	s.transcript.Append(model.NewSystem(ChatWelcome))
	s.log().Info("chat mode entered")
}

func (s *Session) submitChatLocked(input string) {
	switch s.fold.String(strings.TrimSpace(input)) {
	case "exit":
		s.mode = model.ModeShell
		s.history.Reset()
		s.transcript.Append(model.NewSystem(ChatExit))
		s.log().Info("chat mode exited")
		return
	case "clear":
		s.transcript.Clear()
		return
	}

	if s.chat == nil {
		s.transcript.Append(model.NewOutput("Error: chat backend is not configured"))
		return
	}

	ctx := s.beginLocked(requestChat)
	s.mark = s.history.Snapshot()
	s.history.Append(model.UserTurn(input))
	turns := s.history.Turns()

	if s.chat.Streaming() {
		s.transcript.BeginStream()
	} else {
		s.transcript.Append(model.NewThinking())
	}

	gen := s.turn
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		text, err := s.chat.Send(ctx, turns, func(chunk string) {
			s.onChunk(gen, chunk)
		})
		s.finishChat(gen, text, err)
	}()
}

func (s *Session) startShellLocked(command string) {
	ctx := s.beginLocked(requestShell)
	s.transcript.BeginStream()

	gen := s.turn
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, err := s.shell.Run(ctx, command, func(chunk string) {
			s.onChunk(gen, chunk)
		})
		s.finishShell(gen, err)
	}()
}

// beginLocked takes a new cancellation handle and enters the loading state.
func (s *Session) beginLocked(kind requestKind) context.Context {
	ctx, cancel := context.WithCancel(s.ctx)
	s.turn++
	s.cancel = cancel
	s.loading = true
	s.kind = kind
	return ctx
}

// releaseLocked leaves the loading state.
func (s *Session) releaseLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.loading = false
}

// current reports whether gen is still the live request.
func (s *Session) current(gen uint64) bool {
	return s.loading && gen == s.turn
}

// =============================================================================
// RESPONSE HANDLING
// =============================================================================

func (s *Session) onChunk(gen uint64, chunk string) {
	s.update(func() bool {
		if !s.current(gen) {
			return false
		}
		if _, streaming := s.transcript.StreamIndex(); !streaming {
			s.transcript.RemoveKind(model.KindThinking)
			s.transcript.BeginStream()
		}
		s.transcript.AppendChunk(chunk)
		return true
	})
}

func (s *Session) finishChat(gen uint64, text string, err error) {
	s.update(func() bool {
		if !s.current(gen) {
			s.log().Debug("discarding stale chat result")
			return false
		}

		switch {
		case err == nil:
			s.transcript.RemoveKind(model.KindThinking)
			if _, streaming := s.transcript.StreamIndex(); !streaming {
				s.transcript.Append(model.NewOutput(text))
			}
			s.transcript.EndStream()
			s.history.Append(model.AssistantTurn(text))
			s.releaseLocked()
		case errors.Is(err, chat.ErrCancelled):
			s.cancelLocked()
		default:
			s.history.Rollback(s.mark)
			s.replaceTargetLocked(model.NewOutput(errorText(err)))
			s.releaseLocked()
			s.log().Warn("chat request failed", "err", err)
		}
		return true
	})
}

func (s *Session) finishShell(gen uint64, err error) {
	s.update(func() bool {
		if !s.current(gen) {
			return false
		}

		switch {
		case err == nil:
			idx, streaming := s.transcript.StreamIndex()
			if streaming && s.transcript.StreamContent() == "" {
				s.transcript.Remove(idx)
			}
			s.transcript.EndStream()
			s.releaseLocked()
		case errors.Is(err, chat.ErrCancelled):
			s.cancelLocked()
		default:
			if s.transcript.StreamContent() == "" {
				s.replaceTargetLocked(model.NewOutput(errorText(err)))
			} else {
				s.transcript.EndStream()
				s.transcript.Append(model.NewOutput(errorText(err)))
			}
			s.releaseLocked()
			s.log().Warn("shell request failed", "err", err)
		}
		return true
	})
}

// cancelLocked finalizes the in-flight request as cancelled and invalidates
// its generation so a late result is dropped.
func (s *Session) cancelLocked() {
	partial := s.transcript.StreamContent()
	_, streaming := s.transcript.StreamIndex()

	switch s.kind {
	case requestChat:
		s.history.Rollback(s.mark)
		if streaming && partial != "" {
			idx, _ := s.transcript.StreamIndex()
			s.transcript.Replace(idx, model.NewOutput(partial+CancelledMarker))
		} else {
			s.replaceTargetLocked(model.NewSystem(RequestCancel))
		}
	case requestShell:
		if partial != "" {
			s.transcript.EndStream()
			s.transcript.Append(model.NewSystem(InterruptMarker))
		} else {
			s.replaceTargetLocked(model.NewSystem(InterruptMarker))
		}
	}

	s.turn++
	s.releaseLocked()
	s.log().Info("request cancelled")
}

// replaceTargetLocked swaps the streaming target or Thinking placeholder for
// msg. With neither present, msg is appended.
func (s *Session) replaceTargetLocked(msg model.Message) {
	if idx, streaming := s.transcript.StreamIndex(); streaming {
		s.transcript.Replace(idx, msg)
		return
	}
	s.transcript.RemoveKind(model.KindThinking)
	s.transcript.Append(msg)
}

// errorText formats err for inline display, with server debug detail when
// the backend supplied it.
func errorText(err error) string {
	msg, debug := chat.Describe(err)
	text := "Error: " + msg
	if debug != "" {
		text += "\n" + debug
	}
	return text
}
