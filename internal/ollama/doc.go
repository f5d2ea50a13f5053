// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client the backend uses to reach a local
// Ollama server.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama /api/chat endpoint
//   - Message: chat message with role and content
//   - StreamReader: NDJSON stream reader
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL:      "http://127.0.0.1:11434",
//	    DefaultModel: "llama3.2",
//	})
//	err := client.StreamReply(ctx, systemPrompt, turns, func(text string) {
//	    fmt.Print(text)
//	})
package ollama
