// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the HTTP clients the terminal uses to reach its
// backend: the chat endpoint and the shell-command endpoint.
//
// # Wire Format
//
// Requests are JSON. Replies are either a single JSON document or, when the
// response Content-Type is text/event-stream, a sequence of records:
//
//	data: {"text":"Hel"}
//	data: {"text":"lo"}
//	data: {"done":true}
//
// A record may instead carry {"error":"..."}, which aborts the exchange.
//
// # Errors
//
//   - ErrCancelled: the caller's context was cancelled (check with errors.Is)
//   - *APIError: non-2xx reply, with the server's message and debug detail
//   - *StreamError: the server reported an error inside the event stream
//
// Nothing is retried.
//
// # Usage
//
//	client := chat.New(chat.Config{Endpoint: "http://localhost:8787/chat", Stream: true})
//	text, err := client.Send(ctx, turns, func(chunk string) {
//	    fmt.Print(chunk)
//	})
package chat
