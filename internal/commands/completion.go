// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is one tab-completion candidate.
type Completion struct {
	// Value is the full input line after accepting the completion
	Value string

	// Display is the short label shown to the user
	Display string

	// Description explains the candidate
	Description string
}

// Completer handles tab completion for command names and cat arguments.
type Completer struct {
	registry *Registry
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the given shell input.
func (c *Completer) Complete(input string) []Completion {
	if c == nil || c.registry == nil {
		return nil
	}
	input = strings.TrimLeft(input, " \t")
	argIdx, partial := GetPartialArg(input)

	if argIdx < 0 {
		return c.completeCommands(partial)
	}

	name := ExtractCommandName(input)
	if name != "cat" || argIdx != 0 {
		return nil
	}
	return c.completeFiles(name, partial)
}

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	for _, cmd := range c.registry.All() {
		if cmd.Hidden || !strings.HasPrefix(cmd.Name, partial) {
			continue
		}
		value := cmd.Name
		if cmd.Usage != "" {
			value += " "
		}
		completions = append(completions, Completion{
			Value:       value,
			Display:     cmd.Name,
			Description: cmd.Description,
		})
	}
	sortCompletions(completions)
	return completions
}

// completeFiles returns completions for file operands.
func (c *Completer) completeFiles(name, partial string) []Completion {
	var completions []Completion
	for _, f := range c.registry.files {
		if !strings.HasPrefix(f.Name, partial) {
			continue
		}
		completions = append(completions, Completion{
			Value:   name + " " + f.Name,
			Display: f.Name,
		})
	}
	sortCompletions(completions)
	return completions
}

// CommonPrefix returns the longest shared prefix of all completion values,
// which is what a single Tab press fills in.
func CommonPrefix(completions []Completion) string {
	if len(completions) == 0 {
		return ""
	}
	prefix := completions[0].Value
	for _, c := range completions[1:] {
		for !strings.HasPrefix(c.Value, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].Display < completions[j].Display
	})
}
