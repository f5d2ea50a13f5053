// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the HTTP clients for the chat and shell endpoints.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomnagengast/tomterm/internal/logx"
)

// =============================================================================
// SHELL CLIENT
// =============================================================================

// ShellConfig holds the shell client settings.
type ShellConfig struct {
	// Endpoint is the full URL of the shell endpoint
	Endpoint string

	// Stream asks for an event stream reply
	Stream bool

	// CRLF translates "\n" to "\r\n" for raw terminal surfaces
	CRLF bool

	// Timeout bounds the whole request; 0 means none
	Timeout time.Duration

	// HTTPClient overrides the transport (tests)
	HTTPClient *http.Client
}

// ShellClient runs commands on the shell endpoint.
type ShellClient struct {
	endpoint   string
	stream     bool
	crlf       bool
	httpClient *http.Client
}

// NewShell creates a shell client.
func NewShell(cfg ShellConfig) *ShellClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ShellClient{
		endpoint:   cfg.Endpoint,
		stream:     cfg.Stream,
		crlf:       cfg.CRLF,
		httpClient: httpClient,
	}
}

type shellRequest struct {
	Command string `json:"command"`
}

type shellEvent struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run sends command and returns its accumulated output. onOutput receives
// output as it arrives. Output received before an error record is returned
// alongside the *StreamError.
func (c *ShellClient) Run(ctx context.Context, command string, onOutput ChunkFunc) (string, error) {
	if onOutput == nil {
		onOutput = func(string) {}
	}

	body, err := json.Marshal(shellRequest{Command: command})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	logx.WithRequest(logx.Ctx(ctx), requestID).Debug("shell request", "command", command)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", cancelled(ctx, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp)
	}

	if !isEventStream(resp) {
		var ev shellEvent
		if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
			return "", cancelled(ctx, fmt.Errorf("decode response: %w", err))
		}
		if ctx.Err() != nil {
			return "", ErrCancelled
		}
		out := c.translate(ev.Output)
		if out != "" {
			onOutput(out)
		}
		if ev.Error != "" {
			return out, &StreamError{Message: ev.Error}
		}
		return out, nil
	}

	return c.readShellStream(ctx, resp.Body, onOutput)
}

func (c *ShellClient) readShellStream(ctx context.Context, body io.Reader, onOutput ChunkFunc) (string, error) {
	reader := NewEventReader(body)
	var out strings.Builder

	for {
		if ctx.Err() != nil {
			return out.String(), ErrCancelled
		}
		data, err := reader.Next()
		if err != nil {
			if isEOF(err) {
				if ctx.Err() != nil {
					return out.String(), ErrCancelled
				}
				return out.String(), nil
			}
			return out.String(), cancelled(ctx, fmt.Errorf("read stream: %w", err))
		}
		if ctx.Err() != nil {
			return out.String(), ErrCancelled
		}

		var ev shellEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Output != "" {
			text := c.translate(ev.Output)
			out.WriteString(text)
			onOutput(text)
		}
		if ev.Error != "" {
			return out.String(), &StreamError{Message: ev.Error}
		}
	}
}

func (c *ShellClient) translate(s string) string {
	if !c.crlf {
		return s
	}
	return TranslateNewlines(s)
}

// TranslateNewlines rewrites bare "\n" as "\r\n" without doubling existing
// "\r\n" pairs.
func TranslateNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
