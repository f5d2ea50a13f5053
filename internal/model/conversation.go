// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the terminal session.
package model

import "strings"

// =============================================================================
// TRANSCRIPT (DISPLAY LOG)
// =============================================================================

// Transcript is the ordered display log of a terminal session. Entries
// are only removed by Clear, Remove and RemoveKind; the log is unbounded.
//
// At most one entry is mutable at a time: the streaming target. It is
// addressed by index and fed through a strings.Builder so that appending a
// chunk does not reallocate the whole history.
type Transcript struct {
	messages []Message

	streamIdx int
	stream    strings.Builder
	streaming bool
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Append adds a message and returns its index.
func (t *Transcript) Append(msg Message) int {
	t.messages = append(t.messages, msg)
	return len(t.messages) - 1
}

// At returns the message at index i. The streaming target reflects all
// chunks appended so far.
func (t *Transcript) At(i int) Message {
	msg := t.messages[i]
	if t.streaming && i == t.streamIdx {
		msg.Content = t.stream.String()
	}
	return msg
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	if t.streaming && t.streamIdx < len(out) {
		out[t.streamIdx].Content = t.stream.String()
	}
	return out
}

// Clear empties the log and drops any streaming target.
func (t *Transcript) Clear() {
	t.messages = nil
	t.EndStream()
}

// =============================================================================
// STREAMING TARGET
// =============================================================================

// BeginStream appends an empty Output message and makes it the streaming
// target. Returns its index.
func (t *Transcript) BeginStream() int {
	t.EndStream()
	idx := t.Append(NewOutput(""))
	t.streamIdx = idx
	t.stream.Reset()
	t.streaming = true
	return idx
}

// AppendChunk appends text to the streaming target. It is a no-op when no
// stream is active.
func (t *Transcript) AppendChunk(text string) {
	if !t.streaming {
		return
	}
	t.stream.WriteString(text)
}

// StreamContent returns the accumulated streaming text.
func (t *Transcript) StreamContent() string {
	if !t.streaming {
		return ""
	}
	return t.stream.String()
}

// StreamIndex returns the index of the streaming target and whether a
// stream is active.
func (t *Transcript) StreamIndex() (int, bool) {
	return t.streamIdx, t.streaming
}

// EndStream freezes the streaming target with its accumulated content.
func (t *Transcript) EndStream() {
	if !t.streaming {
		return
	}
	if t.streamIdx < len(t.messages) {
		t.messages[t.streamIdx].Content = t.stream.String()
	}
	t.stream.Reset()
	t.streaming = false
}

// Replace overwrites the message at index i. If i is the streaming target,
// the stream is ended first.
func (t *Transcript) Replace(i int, msg Message) {
	if t.streaming && i == t.streamIdx {
		t.stream.Reset()
		t.streaming = false
	}
	if i >= 0 && i < len(t.messages) {
		t.messages[i] = msg
	}
}

// Remove deletes the message at index i.
func (t *Transcript) Remove(i int) {
	if i < 0 || i >= len(t.messages) {
		return
	}
	if t.streaming {
		switch {
		case i == t.streamIdx:
			t.stream.Reset()
			t.streaming = false
		case i < t.streamIdx:
			t.streamIdx--
		}
	}
	t.messages = append(t.messages[:i], t.messages[i+1:]...)
}

// RemoveKind deletes every message of the given kind.
func (t *Transcript) RemoveKind(kind MessageKind) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Kind == kind {
			t.Remove(i)
		}
	}
}

// =============================================================================
// CHAT HISTORY (BACKEND CONTEXT)
// =============================================================================

// ChatHistory is the ordered list of turns sent to the backend.
type ChatHistory struct {
	turns []ChatTurn
}

// Append adds a turn.
func (h *ChatHistory) Append(turn ChatTurn) {
	h.turns = append(h.turns, turn)
}

// Len returns the number of turns.
func (h *ChatHistory) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the turns, safe to hand to another goroutine.
func (h *ChatHistory) Turns() []ChatTurn {
	out := make([]ChatTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Snapshot returns a marker for Rollback.
func (h *ChatHistory) Snapshot() int {
	return len(h.turns)
}

// Rollback restores the history to a previous Snapshot.
func (h *ChatHistory) Rollback(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark < len(h.turns) {
		h.turns = h.turns[:mark]
	}
}

// Reset clears the history.
func (h *ChatHistory) Reset() {
	h.turns = nil
}
