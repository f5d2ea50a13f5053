// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the backend HTTP API the terminal talks to.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/model"
)

// ============================================================================
// WIRE TYPES
// ============================================================================

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// ChatResponse is the non-streaming reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string      `json:"error"`
	Debug *ErrorDebug `json:"debug,omitempty"`
}

// ErrorDebug carries upstream failure detail.
type ErrorDebug struct {
	Message string `json:"message"`
}

// ChatEvent is one record of the chat event stream.
type ChatEvent struct {
	Text  *string `json:"text,omitempty"`
	Done  bool    `json:"done,omitempty"`
	Error string  `json:"error,omitempty"`
}

// ShellRequest is the body of POST /shell.
type ShellRequest struct {
	Command string `json:"command"`
}

// ShellResponse is the reply (or one stream record) of POST /shell.
type ShellResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ============================================================================
// CHAT HANDLER
// ============================================================================

// handleChat handles POST /chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	log := logx.Ctx(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		log.Warn("chat request decode failed", "err", err)
		writeFailure(w, err)
		return
	}

	var turns []model.ChatTurn
	raw := bytes.TrimSpace(req.Messages)
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &turns) != nil {
		writeError(w, http.StatusBadRequest, "Messages array is required")
		return
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != model.RoleUser {
		writeError(w, http.StatusBadRequest, "Last message must be from user")
		return
	}
	if len(turns) > MaxMessageCount {
		writeError(w, http.StatusBadRequest, "Too many messages")
		return
	}
	for _, t := range turns {
		if !t.Role.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid message role")
			return
		}
	}

	persona, responder := s.current()
	if responder == nil {
		writeError(w, http.StatusServiceUnavailable, "Chat backend is not configured")
		return
	}
	log.Debug("chat request", "turns", len(turns), "stream", req.Stream)

	if req.Stream {
		s.streamChat(w, r, persona, responder, turns)
		return
	}

	text, err := responder.Reply(r.Context(), persona, turns)
	if err != nil {
		log.Error("chat upstream failed", "err", err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: text})
}

// streamChat relays upstream text as chat events.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, persona string, responder Responder, turns []model.ChatTurn) {
	stream, ok := newEventStream(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	log := logx.Ctx(r.Context())

	err := responder.StreamReply(r.Context(), persona, turns, func(text string) {
		t := text
		if err := stream.Send(ChatEvent{Text: &t}); err != nil {
			log.Debug("chat stream write failed", "err", err)
		}
	})

	if r.Context().Err() != nil {
		log.Info("chat stream aborted by client")
		return
	}
	if err != nil {
		log.Error("chat stream upstream failed", "err", err)
		_ = stream.Send(ChatEvent{Error: err.Error()})
		return
	}
	_ = stream.Send(ChatEvent{Done: true})
}

// ============================================================================
// SHELL HANDLER
// ============================================================================

// handleShell handles POST /shell by running the simulated command set.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ShellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp := s.runShell(req.Command)
	logx.Ctx(r.Context()).Debug("shell command", "command", commands.ExtractCommandName(req.Command))

	if !wantsEventStream(r) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	stream, ok := newEventStream(w)
	if !ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	lines := strings.SplitAfter(resp.Output, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if err := stream.Send(ShellResponse{Output: line}); err != nil {
			return
		}
	}
	if resp.Error != "" {
		_ = stream.Send(ShellResponse{Error: resp.Error})
	}
}

// runShell executes command against the registry. Session-level commands
// have no meaning over HTTP and are reported as errors.
func (s *Server) runShell(command string) ShellResponse {
	p := commands.Parse(command)
	if p.Name == "" {
		return ShellResponse{}
	}
	res := s.registry.Run(p.Name, p.Args)
	if res.Action != commands.ActionNone {
		return ShellResponse{Error: p.Name + ": only available in the interactive terminal"}
	}
	return ShellResponse{Output: res.Output}
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeFailure writes the generic 500 with the failure detail for debugging.
func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "Failed to process request",
		Debug: &ErrorDebug{Message: err.Error()},
	})
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
