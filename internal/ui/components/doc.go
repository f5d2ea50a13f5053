// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view pieces for the terminal UI.
package components
