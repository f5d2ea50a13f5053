// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the terminal session state machine.
//
// A Session owns the display log, the backend-facing chat history, the input
// mode (shell or chat) and at most one in-flight request. Presentations feed
// it keystroke-level events and redraw from the Snapshot it publishes after
// every mutation.
//
// # Key Types
//
//   - Session: the state machine
//   - Snapshot: immutable copy of the state handed to subscribers
//   - Options: collaborators (command registry, chat client, shell client)
//
// # Usage
//
//	s := session.New(ctx, session.Options{
//	    Registry: commands.NewRegistry(),
//	    Chat:     chat.New(chat.Config{Endpoint: url, Stream: true}),
//	})
//	unsubscribe := s.Subscribe(func(snap session.Snapshot) { redraw(snap) })
//	defer unsubscribe()
//	s.Open()
//	s.Submit("tom")
//	s.Submit("hello")
//
// # Cancellation
//
// Cancel and Escape finalize the in-flight request synchronously: when they
// return, Loading is false and the chat history is rolled back. The result
// of the aborted request, if it still arrives, is discarded.
package session
