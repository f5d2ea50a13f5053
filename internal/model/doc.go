// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the terminal session,
// its presentations and the backend.
//
// # Key Types
//
//   - Message: one line or block of terminal output or input (display log)
//   - Transcript: the ordered display log, with a single streaming target
//   - ChatTurn: one user or assistant unit of backend-facing history
//   - ChatHistory: ordered turns with snapshot/rollback support
//   - Mode: shell or chat
//
// # Usage
//
//	var t model.Transcript
//	idx := t.BeginStream()
//	t.AppendChunk("Hel")
//	t.AppendChunk("lo")
//	fmt.Println(t.At(idx).Content) // Hello
package model
