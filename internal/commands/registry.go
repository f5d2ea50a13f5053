// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

import (
	"sort"
)

// =============================================================================
// ACTIONS
// =============================================================================

// Action is a session-level side effect signalled by a command.
type Action int

const (
	// ActionNone means the result is plain output.
	ActionNone Action = iota
	// ActionEnterChat switches the session into chat mode.
	ActionEnterChat
	// ActionClear empties the display history.
	ActionClear
	// ActionClose closes the terminal.
	ActionClose
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionEnterChat:
		return "enter-chat"
	case ActionClear:
		return "clear"
	case ActionClose:
		return "close"
	default:
		return "unknown"
	}
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Result is what a command produced.
type Result struct {
	// Output is the text to append as a single Output message. Empty means
	// nothing is appended.
	Output string

	// Action is the session-level side effect, if any.
	Action Action

	// Found is false when the command name is not registered.
	Found bool
}

// Handler executes a command with its arguments.
type Handler func(r *Registry, args []string) Result

// Command represents a shell command that can be executed.
type Command struct {
	// Name is the command name (e.g., "cat")
	Name string

	// Usage shows argument syntax (e.g., "cat <file>")
	Usage string

	// Description is shown in help
	Description string

	// Handler is the function that executes the command
	Handler Handler

	// Hidden commands don't appear in help or completion
	Hidden bool
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands and the static file table.
type Registry struct {
	commands map[string]*Command
	order    []string
	files    []File
}

// NewRegistry creates a registry with all built-in commands and the default
// file table.
func NewRegistry() *Registry {
	return NewRegistryWithFiles(DefaultFiles())
}

// NewRegistryWithFiles creates a registry with all built-in commands over
// the given file table. Table order is preserved by ls.
func NewRegistryWithFiles(files []File) *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		files:    append([]File(nil), files...),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry. Registering an existing name
// replaces the previous command but keeps its help position.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Get retrieves a command by name. Names are case-sensitive, like a shell.
func (r *Registry) Get(name string) *Command {
	return r.commands[name]
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Names returns the visible command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files returns a copy of the static file table.
func (r *Registry) Files() []File {
	return append([]File(nil), r.files...)
}

// Lookup returns the content of a file by name.
func (r *Registry) Lookup(name string) (string, bool) {
	for _, f := range r.files {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}

// Execute parses a command line and runs it. Empty input yields a zero
// Result with Found=false and no output.
func (r *Registry) Execute(input string) Result {
	p := Parse(input)
	if p.Name == "" {
		return Result{}
	}
	return r.Run(p.Name, p.Args)
}

// Run dispatches a parsed command.
func (r *Registry) Run(name string, args []string) Result {
	cmd := r.Get(name)
	if cmd == nil {
		return Result{Output: NotFound(name)}
	}
	res := cmd.Handler(r, args)
	res.Found = true
	return res
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "ls",
		Description: "List files",
		Handler:     handleLs,
	})

	r.Register(&Command{
		Name:        "cat",
		Usage:       "cat <file>",
		Description: "Display file contents",
		Handler:     handleCat,
	})

	r.Register(&Command{
		Name:        "tom",
		Description: "Chat with Tom's AI agent",
		Handler:     handleTom,
	})

	r.Register(&Command{
		Name:        "clear",
		Description: "Clear the terminal",
		Handler:     handleClear,
	})

	r.Register(&Command{
		Name:        "exit",
		Description: "Close the terminal",
		Handler:     handleExit,
	})

	r.Register(&Command{
		Name:        "help",
		Description: "Show available commands",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:    "welcome",
		Hidden:  true,
		Handler: handleWelcome,
	})
}
