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
	"github.com/tomnagengast/tomterm/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds the chat client settings.
type Config struct {
	// Endpoint is the full URL of the chat endpoint
	Endpoint string

	// Stream requests incremental delivery
	Stream bool

	// Timeout bounds the whole request; 0 means none
	Timeout time.Duration

	// HTTPClient overrides the transport (tests)
	HTTPClient *http.Client
}

// DefaultEndpoint is used when Config.Endpoint is empty.
const DefaultEndpoint = "http://127.0.0.1:8787/chat"

// ChunkFunc receives each piece of assistant text as it arrives.
type ChunkFunc func(text string)

// =============================================================================
// CLIENT
// =============================================================================

// Client sends conversation history to the chat endpoint.
//
// The Client is safe for concurrent use; each Send is independent.
type Client struct {
	endpoint   string
	stream     bool
	httpClient *http.Client
}

// New creates a chat client.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		stream:     cfg.Stream,
		httpClient: httpClient,
	}
}

// Streaming reports whether the client asks for incremental delivery.
func (c *Client) Streaming() bool {
	return c.stream
}

// Endpoint returns the chat endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type chatRequest struct {
	Messages []model.ChatTurn `json:"messages"`
	Stream   bool             `json:"stream"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string          `json:"error"`
	Debug json.RawMessage `json:"debug,omitempty"`
}

type chatEvent struct {
	Text  *string `json:"text"`
	Done  bool    `json:"done"`
	Error *string `json:"error"`
}

// Send posts turns to the endpoint and returns the full assistant text.
// onChunk is called for every piece of text in arrival order; a non-stream
// reply is delivered in one call. Cancelling ctx returns ErrCancelled.
func (c *Client) Send(ctx context.Context, turns []model.ChatTurn, onChunk ChunkFunc) (string, error) {
	if onChunk == nil {
		onChunk = func(string) {}
	}
	if turns == nil {
		turns = []model.ChatTurn{}
	}

	body, err := json.Marshal(chatRequest{Messages: turns, Stream: c.stream})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	requestID := uuid.NewString()
	log := logx.WithRequest(logx.Ctx(ctx), requestID)
	log.Debug("chat request", "turns", len(turns), "stream", c.stream)

	resp, err := c.post(ctx, requestID, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		log.Warn("chat request failed", "status", resp.StatusCode, "err", apiErr.Error())
		return "", apiErr
	}

	if isEventStream(resp) {
		text, err := readChatStream(ctx, resp.Body, onChunk)
		if err != nil {
			return "", err
		}
		log.Debug("chat stream complete", "chars", len(text))
		return text, nil
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", cancelled(ctx, fmt.Errorf("decode response: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}
	onChunk(out.Response)
	return out.Response, nil
}

func (c *Client) post(ctx context.Context, requestID string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.stream {
		req.Header.Set("Accept", "text/event-stream, application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cancelled(ctx, fmt.Errorf("send request: %w", err))
	}
	return resp, nil
}

// readChatStream consumes chat events until done, error, or EOF. ctx is
// checked at every record boundary.
func readChatStream(ctx context.Context, body io.Reader, onChunk ChunkFunc) (string, error) {
	reader := NewEventReader(body)
	var text strings.Builder

	for {
		if ctx.Err() != nil {
			return "", ErrCancelled
		}

		data, err := reader.Next()
		if err != nil {
			if isEOF(err) {
				if ctx.Err() != nil {
					return "", ErrCancelled
				}
				return text.String(), nil
			}
			return "", cancelled(ctx, fmt.Errorf("read stream: %w", err))
		}
		if ctx.Err() != nil {
			return "", ErrCancelled
		}

		var ev chatEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch {
		case ev.Error != nil:
			return "", &StreamError{Message: *ev.Error}
		case ev.Done:
			return text.String(), nil
		case ev.Text != nil:
			text.WriteString(*ev.Text)
			onChunk(*ev.Text)
		}
	}
}

// decodeAPIError builds an APIError from a non-2xx reply.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxEventSize))
	if err != nil {
		return apiErr
	}
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	apiErr.Message = body.Error
	if len(body.Debug) > 0 && string(body.Debug) != "null" {
		var compact bytes.Buffer
		if json.Compact(&compact, body.Debug) == nil {
			apiErr.Debug = compact.String()
		}
	}
	return apiErr
}
