// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
//
// The registry maps a typed command name to a handler. Handlers are pure:
// they return output text and, for session-level commands, an Action that
// the terminal session applies (enter chat, clear, close).
//
// # Built-in Commands
//
//   - ls: list the static files
//   - cat <file>: print a static file
//   - help: usage block
//   - tom: enter chat mode
//   - clear: clear the terminal
//   - exit: close the terminal
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := reg.Execute("cat about.txt")
//	fmt.Println(res.Output)
package commands
