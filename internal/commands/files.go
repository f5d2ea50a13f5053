// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the simulated shell command set of the terminal.
package commands

// File is one entry in the static in-memory file table.
type File struct {
	Name    string
	Content string
}

// DefaultFiles returns the built-in file table. ls prints it in this order.
func DefaultFiles() []File {
	return []File{
		{
			Name: "about.txt",
			Content: `Tom Nagengast
Based in California.

Currently slingin' bits at Cable.tech and stompin' grapes at Bajka Wine.
Type 'tom' to chat with an AI version of me.`,
		},
		{
			Name: "work.txt",
			Content: `Now:
  Cable.tech    software and data engineering
  Bajka Wine    winemaking

Before:
  Replit        data engineering, AI data pipelines
  Replicated
  Netlify       data team, operational analytics
  Mindbody`,
		},
		{
			Name: "interests.txt",
			Content: `- Data engineering and AI/ML infrastructure
- Building developer tools and products
- Making wine at Bajka Wine
- Technology and startups`,
		},
	}
}
