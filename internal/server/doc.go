// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the backend HTTP API the terminal talks to.
//
// Endpoints:
//   - POST /chat   - persona chat, JSON or Server-Sent Events
//   - POST /shell  - simulated shell commands, JSON or Server-Sent Events
//   - GET  /health - liveness
//
// /chat and /shell are also mounted under /.netlify/functions/ so the site's
// existing client paths keep working.
//
// # Chat Streaming
//
// With "stream": true the reply is a sequence of records:
//
//	data: {"text":"Hi"}
//	data: {"done":true}
//
// An upstream failure mid-stream is sent as data: {"error":"..."}.
package server
