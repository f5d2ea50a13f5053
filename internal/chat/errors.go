// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the HTTP clients for the chat and shell endpoints.
package chat

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrCancelled is returned when the caller cancels an in-flight request.
var ErrCancelled = errors.New("request cancelled")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	// StatusCode is the HTTP status of the reply
	StatusCode int

	// Message is the server-supplied error text, if any
	Message string

	// Debug is the server-supplied debug detail, compacted JSON, if any
	Debug string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// StreamError is an error record received inside an event stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// Describe splits err into the text shown after "Error: " and any debug
// detail the server supplied.
func Describe(err error) (message, debug string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error(), apiErr.Debug
	}
	return err.Error(), ""
}

// cancelled maps a failure seen after ctx was cancelled to ErrCancelled.
func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}
