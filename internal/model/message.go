// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the terminal session.
package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the roles the backend accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// CHAT TURN
// =============================================================================

// ChatTurn is one exchange unit in the conversation history sent to the backend.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn creates a user turn.
func UserTurn(content string) ChatTurn {
	return ChatTurn{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(content string) ChatTurn {
	return ChatTurn{Role: RoleAssistant, Content: content}
}

// =============================================================================
// MODE
// =============================================================================

// Mode is the input mode of the terminal.
type Mode int

const (
	ModeShell Mode = iota
	ModeChat
)

// Prompts echoed in front of submitted input.
const (
	ShellPrompt = "$ "
	ChatPrompt  = "tom> "
)

// Prompt returns the prompt prefix for the mode.
func (m Mode) Prompt() string {
	if m == ModeChat {
		return ChatPrompt
	}
	return ShellPrompt
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeShell:
		return "shell"
	case ModeChat:
		return "chat"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// =============================================================================
// MESSAGE KIND
// =============================================================================

// MessageKind classifies a display log entry.
type MessageKind int

const (
	// KindInput is a user-submitted line, echoed with its prompt prefix.
	KindInput MessageKind = iota
	// KindOutput is a command result or assistant reply.
	KindOutput
	// KindSystem is a session-level notice.
	KindSystem
	// KindThinking is a transient placeholder shown while awaiting a response.
	KindThinking
)

// String returns the kind name.
func (k MessageKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindSystem:
		return "system"
	case KindThinking:
		return "thinking"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one line or block of terminal output or input.
type Message struct {
	Kind    MessageKind
	Content string
}

// NewInput creates an Input message echoing the prompt and the raw text.
func NewInput(mode Mode, text string) Message {
	return Message{Kind: KindInput, Content: mode.Prompt() + text}
}

// NewOutput creates an Output message.
func NewOutput(content string) Message {
	return Message{Kind: KindOutput, Content: content}
}

// NewSystem creates a System message.
func NewSystem(content string) Message {
	return Message{Kind: KindSystem, Content: content}
}

// NewThinking creates a Thinking placeholder.
func NewThinking() Message {
	return Message{Kind: KindThinking, Content: "Thinking..."}
}

// IsEmpty returns true if the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Lines splits the message content into display lines.
func (m Message) Lines() []string {
	return strings.Split(m.Content, "\n")
}
