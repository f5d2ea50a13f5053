// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the HTTP clients for the chat and shell endpoints.
package chat

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
)

// MaxEventSize is the largest single event line accepted (64KB).
const MaxEventSize = 64 * 1024

// =============================================================================
// SSE READER
// =============================================================================

// EventReader parses Server-Sent Events from a response body and yields the
// data payload of each event.
type EventReader struct {
	scanner *bufio.Scanner
}

// NewEventReader creates a reader over r.
func NewEventReader(r io.Reader) *EventReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxEventSize)
	return &EventReader{scanner: scanner}
}

// Next returns the data of the next event. Multi-line data fields are joined
// with newlines. Returns io.EOF when the stream ends.
func (r *EventReader) Next() ([]byte, error) {
	var data [][]byte
	for r.scanner.Scan() {
		line := bytes.TrimRight(r.scanner.Bytes(), "\r")

		if len(line) == 0 {
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			value := line[len("data:"):]
			value = bytes.TrimPrefix(value, []byte(" "))
			data = append(data, append([]byte(nil), value...))
		}
		// event:, id:, retry: and comments are ignored
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		return bytes.Join(data, []byte("\n")), nil
	}
	return nil, io.EOF
}

// isEventStream reports whether the reply is an event stream.
func isEventStream(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/event-stream"
}

// isEOF reports a clean end of stream.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
