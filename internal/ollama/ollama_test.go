// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomnagengast/tomterm/internal/model"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages("be Tom", []model.ChatTurn{
		model.UserTurn("hi"),
		model.AssistantTurn("hello"),
	})

	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "be Tom" {
		t.Errorf("system = %+v", msgs[0])
	}
	if msgs[2].Role != "assistant" {
		t.Errorf("Role = %q, want 'assistant'", msgs[2].Role)
	}

	if got := BuildMessages("", []model.ChatTurn{model.UserTurn("x")}); len(got) != 1 {
		t.Errorf("empty system prompt should be omitted, got %d messages", len(got))
	}
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReaderProcess(t *testing.T) {
	body := strings.Join([]string{
		`{"model":"m","message":{"role":"assistant","content":"Hel"},"done":false}`,
		``,
		`garbage`,
		`{"model":"m","message":{"role":"assistant","content":"lo"},"done":false}`,
		`{"model":"m","message":{"role":"assistant","content":""},"done":true,"eval_count":2}`,
		`{"model":"m","message":{"role":"assistant","content":"after done"},"done":false}`,
	}, "\n")

	reader := NewStreamReader(strings.NewReader(body))
	var chunks []StreamChunk
	if err := reader.Process(context.Background(), func(c StreamChunk) { chunks = append(chunks, c) }); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if reader.Content() != "Hello" {
		t.Errorf("Content = %q, want Hello", reader.Content())
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if !last.Done || last.CompletionTokens != 2 || last.Model != "m" {
		t.Errorf("final chunk = %+v", last)
	}
}

func TestStreamReaderErrorLine(t *testing.T) {
	reader := NewStreamReader(strings.NewReader(`{"error":"out of memory"}` + "\n"))
	err := reader.Process(context.Background(), func(StreamChunk) {})
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("err = %v, want out of memory", err)
	}
}

func TestStreamReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewStreamReader(strings.NewReader("{}\n")).Process(ctx, func(StreamChunk) {})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestClientStreamReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !req.Stream || req.Model != "tiny" || req.Messages[0].Role != "system" {
			t.Errorf("request = %+v", req)
		}
		if req.Options == nil || req.Options.NumPredict != 64 {
			t.Errorf("options = %+v", req.Options)
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"a"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"b"},"done":true}`)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, DefaultModel: "tiny", MaxTokens: 64})
	var got strings.Builder
	err := client.StreamReply(context.Background(), "sys", []model.ChatTurn{model.UserTurn("hi")}, func(s string) {
		got.WriteString(s)
	})
	if err != nil {
		t.Fatalf("StreamReply: %v", err)
	}
	if got.String() != "ab" {
		t.Errorf("text = %q, want ab", got.String())
	}
}

func TestClientReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"model":"tiny","message":{"role":"assistant","content":"whole"},"done":true}`)
	}))
	defer srv.Close()

	text, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Reply(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if text != "whole" {
		t.Errorf("text = %q", text)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, "", IsModelNotFound},
		{"server message", http.StatusInternalServerError, `{"error":"boom"}`, func(err error) bool {
			return err != nil && err.Error() == "boom"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Reply(context.Background(), "", nil)
			if !tc.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestClientNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClientWithConfig(&ClientConfig{BaseURL: url}).CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("err = %v, want not running", err)
	}
}
