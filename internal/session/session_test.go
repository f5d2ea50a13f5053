// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomnagengast/tomterm/internal/chat"
	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type sendFunc func(ctx context.Context, turns []model.ChatTurn, onChunk chat.ChunkFunc) (string, error)

type fakeChat struct {
	stream bool
	send   sendFunc

	mu    sync.Mutex
	calls int
	turns [][]model.ChatTurn
}

func (f *fakeChat) Streaming() bool { return f.stream }

func (f *fakeChat) Send(ctx context.Context, turns []model.ChatTurn, onChunk chat.ChunkFunc) (string, error) {
	f.mu.Lock()
	f.calls++
	f.turns = append(f.turns, turns)
	f.mu.Unlock()
	return f.send(ctx, turns, onChunk)
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// replies streams chunks then completes.
func replies(chunks ...string) sendFunc {
	return func(ctx context.Context, _ []model.ChatTurn, onChunk chat.ChunkFunc) (string, error) {
		var text string
		for _, c := range chunks {
			onChunk(c)
			text += c
		}
		return text, nil
	}
}

// blocks emits chunks, signals started, then waits for cancellation.
func blocks(started chan<- struct{}, chunks ...string) sendFunc {
	return func(ctx context.Context, _ []model.ChatTurn, onChunk chat.ChunkFunc) (string, error) {
		for _, c := range chunks {
			onChunk(c)
		}
		close(started)
		<-ctx.Done()
		return "", chat.ErrCancelled
	}
}

type fakeShell struct {
	output string
	err    error
}

func (f *fakeShell) Run(ctx context.Context, command string, onOutput chat.ChunkFunc) (string, error) {
	if f.output != "" {
		onOutput(f.output)
	}
	return f.output, f.err
}

func newOpen(t *testing.T, c Chatter) *Session {
	t.Helper()
	s := New(context.Background(), Options{Registry: commands.NewRegistry(), Chat: c})
	s.Open()
	return s
}

func last(snap Snapshot) model.Message {
	return snap.History[len(snap.History)-1]
}

// =============================================================================
// SHELL MODE
// =============================================================================

func TestOpenPrintsWelcome(t *testing.T) {
	s := newOpen(t, nil)
	snap := s.Snapshot()
	require.True(t, snap.Open)
	require.Len(t, snap.History, 1)
	assert.Equal(t, commands.WelcomeText, snap.History[0].Content)
	assert.Equal(t, model.ModeShell, snap.Mode)
}

func TestLsScenario(t *testing.T) {
	s := newOpen(t, nil)
	s.Submit("ls")

	snap := s.Snapshot()
	require.Len(t, snap.History, 3)
	assert.Equal(t, model.KindInput, snap.History[1].Kind)
	assert.Equal(t, "$ ls", snap.History[1].Content)
	out := last(snap)
	assert.Equal(t, model.KindOutput, out.Kind)
	assert.Equal(t, []string{"  about.txt", "  work.txt", "  interests.txt"}, out.Lines())
}

func TestUnknownCommandInline(t *testing.T) {
	s := newOpen(t, nil)
	s.Submit("rm -rf /")
	assert.Equal(t, "rm: command not found. Type 'help' for available commands.", last(s.Snapshot()).Content)
}

func TestBlankInputIgnored(t *testing.T) {
	s := newOpen(t, nil)
	before := s.Snapshot()
	s.Submit("   \t ")
	after := s.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Len(t, after.History, len(before.History))
}

func TestClearEmptiesHistory(t *testing.T) {
	s := newOpen(t, nil)
	s.Submit("help")
	s.Submit("clear")
	assert.Empty(t, s.Snapshot().History)
}

func TestExitInShellClosesAndResets(t *testing.T) {
	s := newOpen(t, nil)
	s.Submit("ls")
	s.Submit("exit")

	snap := s.Snapshot()
	assert.False(t, snap.Open)
	assert.Empty(t, snap.History)

	// Closed terminals ignore input.
	s.Submit("ls")
	assert.Empty(t, s.Snapshot().History)
}

// =============================================================================
// CHAT MODE TRANSITIONS
// =============================================================================

func TestTomThenExitMakesNoNetworkCall(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("x")}
	s := newOpen(t, fc)

	s.Submit("tom")
	snap := s.Snapshot()
	assert.Equal(t, model.ModeChat, snap.Mode)
	assert.Equal(t, model.NewSystem(ChatWelcome), last(snap))

	s.Submit("exit")
	snap = s.Snapshot()
	assert.Equal(t, model.ModeShell, snap.Mode)
	assert.Equal(t, model.NewSystem(ChatExit), last(snap))
	assert.Equal(t, "tom> exit", snap.History[len(snap.History)-2].Content)
	assert.Zero(t, fc.callCount())
}

func TestChatInterceptsCaseInsensitive(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("x")}
	s := newOpen(t, fc)
	s.Submit("tom")

	s.Submit("  CLEAR ")
	snap := s.Snapshot()
	assert.Empty(t, snap.History)
	assert.Equal(t, model.ModeChat, snap.Mode)

	s.Submit("Exit")
	assert.Equal(t, model.ModeShell, s.Snapshot().Mode)
	assert.Zero(t, fc.callCount())
}

func TestEnteringChatResetsChatHistory(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("hi there")}
	s := newOpen(t, fc)

	s.Submit("tom")
	s.Submit("hello")
	s.Wait()
	require.Len(t, s.Snapshot().ChatHistory, 2)

	s.Submit("exit")
	s.Submit("tom")
	assert.Empty(t, s.Snapshot().ChatHistory)
}

func TestCloseInChatThenReopen(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("a")}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hello")
	s.Wait()

	s.Close()
	s.Open()

	snap := s.Snapshot()
	assert.Equal(t, model.ModeShell, snap.Mode)
	assert.Empty(t, snap.ChatHistory)
	require.Len(t, snap.History, 1)
	assert.Equal(t, commands.WelcomeText, snap.History[0].Content)
}

// =============================================================================
// CHAT TURNS
// =============================================================================

func TestStreamingAccumulatesInOrder(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("Hel", "lo")}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("greet me")
	s.Wait()

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, model.NewOutput("Hello"), last(snap))
	assert.Equal(t, []model.ChatTurn{
		model.UserTurn("greet me"),
		model.AssistantTurn("Hello"),
	}, snap.ChatHistory)
}

func TestSendCarriesFullHistory(t *testing.T) {
	fc := &fakeChat{stream: true, send: replies("r")}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("one")
	s.Wait()
	s.Submit("two")
	s.Wait()

	fc.mu.Lock()
	defer fc.mu.Unlock()
	require.Len(t, fc.turns, 2)
	assert.Equal(t, []model.ChatTurn{
		model.UserTurn("one"),
		model.AssistantTurn("r"),
		model.UserTurn("two"),
	}, fc.turns[1])
}

func TestNonStreamingShowsThinking(t *testing.T) {
	release := make(chan struct{})
	fc := &fakeChat{send: func(ctx context.Context, _ []model.ChatTurn, onChunk chat.ChunkFunc) (string, error) {
		<-release
		onChunk("whole")
		return "whole", nil
	}}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hi")

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, model.KindThinking, last(snap).Kind)

	close(release)
	s.Wait()
	snap = s.Snapshot()
	assert.Equal(t, model.NewOutput("whole"), last(snap))
	for _, m := range snap.History {
		assert.NotEqual(t, model.KindThinking, m.Kind)
	}
}

func TestErrorRollsBackAndShowsDebug(t *testing.T) {
	fc := &fakeChat{stream: true, send: func(context.Context, []model.ChatTurn, chat.ChunkFunc) (string, error) {
		return "", &chat.APIError{StatusCode: 500, Message: "Failed to process request", Debug: `{"message":"down"}`}
	}}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hi")
	s.Wait()

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.ChatHistory)
	assert.Equal(t, model.NewOutput("Error: Failed to process request\n{\"message\":\"down\"}"), last(snap))

	// Session remains usable.
	s.Submit("exit")
	assert.Equal(t, model.ModeShell, s.Snapshot().Mode)
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancelBeforeFirstChunkRollsBack(t *testing.T) {
	started := make(chan struct{})
	fc := &fakeChat{stream: true, send: blocks(started)}
	s := newOpen(t, fc)
	s.Submit("tom")
	before := len(s.Snapshot().ChatHistory)

	s.Submit("hi")
	<-started
	require.True(t, s.Snapshot().Loading)

	s.Cancel()
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.ChatHistory, before)
	assert.Equal(t, model.NewSystem(RequestCancel), last(snap))

	s.Wait()
	assert.Equal(t, snap.History, s.Snapshot().History)
}

func TestCancelKeepsPartialText(t *testing.T) {
	started := make(chan struct{})
	fc := &fakeChat{stream: true, send: blocks(started, "Hel")}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hi")
	<-started

	s.Escape()
	s.Wait()
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Open)
	assert.Empty(t, snap.ChatHistory)
	assert.Equal(t, model.NewOutput("Hel"+CancelledMarker), last(snap))
}

func TestLateResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fc := &fakeChat{stream: true, send: func(ctx context.Context, _ []model.ChatTurn, onChunk chat.ChunkFunc) (string, error) {
		close(started)
		<-release
		onChunk("late")
		return "late", nil
	}}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hi")
	<-started

	s.Cancel()
	want := s.Snapshot()
	close(release)
	s.Wait()

	got := s.Snapshot()
	assert.Equal(t, want.History, got.History)
	assert.Empty(t, got.ChatHistory)
}

func TestSubmitWhileLoadingIsNoop(t *testing.T) {
	started := make(chan struct{})
	fc := &fakeChat{stream: true, send: blocks(started)}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("first")
	<-started

	before := s.Snapshot()
	s.Submit("second")
	s.Submit("exit")
	after := s.Snapshot()
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, 1, fc.callCount())
	assert.True(t, after.Loading)

	s.Cancel()
	s.Wait()
}

func TestEscapeWhenIdleCloses(t *testing.T) {
	s := newOpen(t, nil)
	s.Submit("tom")
	s.Escape()
	snap := s.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, model.ModeShell, snap.Mode)
}

func TestCloseWhileLoadingResets(t *testing.T) {
	started := make(chan struct{})
	fc := &fakeChat{stream: true, send: blocks(started, "partial")}
	s := newOpen(t, fc)
	s.Submit("tom")
	s.Submit("hi")
	<-started

	s.Close()
	s.Wait()
	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.Open)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.ChatHistory)
}

func TestStateTracksPendingRequest(t *testing.T) {
	started := make(chan struct{})
	s := newOpen(t, &fakeChat{stream: true, send: blocks(started)})

	mode, loading := s.State()
	assert.Equal(t, model.ModeShell, mode)
	assert.False(t, loading)

	s.Submit("tom")
	s.Submit("hi")
	mode, loading = s.State()
	assert.Equal(t, model.ModeChat, mode)
	assert.True(t, loading)

	<-started
	s.Cancel()
	_, loading = s.State()
	assert.False(t, loading)
	s.Wait()
}

// =============================================================================
// REMOTE SHELL
// =============================================================================

func TestRemoteShellForwardsUnknownCommands(t *testing.T) {
	s := New(context.Background(), Options{Shell: &fakeShell{output: "remote says hi"}})
	s.Open()

	s.Submit("uname")
	s.Wait()
	assert.Equal(t, model.NewOutput("remote says hi"), last(s.Snapshot()))

	// Local commands still run locally.
	s.Submit("cat")
	assert.Equal(t, commands.MissingOperand, last(s.Snapshot()).Content)
}

func TestRemoteShellError(t *testing.T) {
	s := New(context.Background(), Options{Shell: &fakeShell{err: &chat.StreamError{Message: "sandbox offline"}}})
	s.Open()
	s.Submit("uname")
	s.Wait()
	assert.Equal(t, model.NewOutput("Error: sandbox offline"), last(s.Snapshot()))
	assert.False(t, s.Snapshot().Loading)
}

// =============================================================================
// OBSERVER
// =============================================================================

func TestSubscribeReceivesEveryMutation(t *testing.T) {
	s := New(context.Background(), Options{})
	var mu sync.Mutex
	var versions []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	s.Open()
	s.Submit("ls")
	unsubscribe()
	s.Submit("help")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, versions)
}
