// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

import (
	"strings"
)

// Fixed output strings.
const (
	// HelpText is the usage block printed by help.
	HelpText = `Available commands:
  ls          List files
  cat <file>  Display file contents
  tom         Chat with Tom's AI agent
  clear       Clear the terminal
  exit        Close the terminal`

	// WelcomeText is printed when the terminal opens.
	WelcomeText = `Welcome to tom@sandbox.
Type 'help' for available commands.`

	// MissingOperand is printed by cat without arguments.
	MissingOperand = "cat: missing file operand"
)

// NotFound formats the unknown-command line.
func NotFound(name string) string {
	return name + ": command not found. Type 'help' for available commands."
}

// NoSuchFile formats the cat miss line.
func NoSuchFile(name string) string {
	return "cat: " + name + ": No such file or directory"
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleLs(r *Registry, _ []string) Result {
	lines := make([]string, 0, len(r.files))
	for _, f := range r.files {
		lines = append(lines, "  "+f.Name)
	}
	return Result{Output: strings.Join(lines, "\n")}
}

func handleCat(r *Registry, args []string) Result {
	if len(args) == 0 {
		return Result{Output: MissingOperand}
	}
	name := args[0]
	content, ok := r.Lookup(name)
	if !ok {
		return Result{Output: NoSuchFile(name)}
	}
	return Result{Output: content}
}

func handleHelp(_ *Registry, _ []string) Result {
	return Result{Output: HelpText}
}

func handleWelcome(_ *Registry, _ []string) Result {
	return Result{Output: WelcomeText}
}

func handleTom(_ *Registry, _ []string) Result {
	return Result{Action: ActionEnterChat}
}

func handleClear(_ *Registry, _ []string) Result {
	return Result{Action: ActionClear}
}

func handleExit(_ *Registry, _ []string) Result {
	return Result{Action: ActionClose}
}
