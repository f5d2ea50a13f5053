// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing a command line.
type ParseResult struct {
	// Name is the command name (first word)
	Name string

	// Args are the remaining whitespace-separated words
	Args []string

	// RawInput is the trimmed input string
	RawInput string
}

// Parse splits a command line on whitespace into a command and its arguments.
// There is no quoting: the command set is simulated, not a real shell.
func Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return result
	}
	result.Name = fields[0]
	if len(fields) > 1 {
		result.Args = fields[1:]
	}
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ExtractCommandName extracts just the command name from input.
// e.g., "cat about.txt" -> "cat"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// GetPartialArg returns the index and partial text of the argument being
// typed. Index 0 is the first argument after the command name; -1 means
// the command name itself is still being typed.
func GetPartialArg(input string) (int, string) {
	fields := strings.Fields(input)
	trailingSpace := len(input) > 0 && unicode.IsSpace(rune(input[len(input)-1]))

	switch {
	case len(fields) == 0:
		return -1, ""
	case len(fields) == 1 && !trailingSpace:
		return -1, fields[0]
	case trailingSpace:
		return len(fields) - 1, ""
	default:
		return len(fields) - 2, fields[len(fields)-1]
	}
}
