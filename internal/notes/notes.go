// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes holds the site's markdown notes and renders their RSS feed.
//
// Each note is a markdown file with YAML front matter:
//
//	---
//	slug: building-this-site
//	title: Building This Site
//	date: "2025-11-26"
//	---
//	# Building This Site
//	...
package notes

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.md
var content embed.FS

// DateLayout is the front matter date format.
const DateLayout = "2006-01-02"

// Note is one published note.
type Note struct {
	Slug    string
	Title   string
	Date    time.Time
	Content string
}

type frontMatter struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

var (
	// ErrNoFrontMatter is returned for a file that does not open with "---".
	ErrNoFrontMatter = errors.New("missing front matter")

	// ErrNotFound is returned by Find for an unknown slug.
	ErrNotFound = errors.New("note not found")
)

var delimiter = []byte("---")

// Parse reads one note. The slug defaults to the file name without its
// extension.
func Parse(name string, data []byte) (Note, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, append(delimiter, '\n')) {
		return Note{}, fmt.Errorf("%s: %w", name, ErrNoFrontMatter)
	}
	rest := data[len(delimiter)+1:]
	end := bytes.Index(rest, append([]byte("\n"), append(delimiter, '\n')...))
	if end < 0 {
		return Note{}, fmt.Errorf("%s: unterminated front matter", name)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return Note{}, fmt.Errorf("%s: front matter: %w", name, err)
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(fm.Date))
	if err != nil {
		return Note{}, fmt.Errorf("%s: date: %w", name, err)
	}
	if fm.Slug == "" {
		fm.Slug = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if fm.Title == "" {
		return Note{}, fmt.Errorf("%s: title is required", name)
	}

	return Note{
		Slug:    fm.Slug,
		Title:   fm.Title,
		Date:    date,
		Content: string(rest[end+len(delimiter)+2:]),
	}, nil
}

// Load reads every *.md file under fsys, newest first.
func Load(fsys fs.FS) ([]Note, error) {
	names, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		n, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[n.Slug]; dup {
			return nil, fmt.Errorf("%s: slug %q already used by %s", name, n.Slug, prev)
		}
		seen[n.Slug] = name
		notes = append(notes, n)
	}
	Sort(notes)
	return notes, nil
}

// Sort orders notes newest first, breaking ties by slug.
func Sort(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].Date.Equal(notes[j].Date) {
			return notes[i].Date.After(notes[j].Date)
		}
		return notes[i].Slug < notes[j].Slug
	})
}

// All returns the embedded notes, newest first.
func All() ([]Note, error) {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Find returns the note with slug from notes.
func Find(notes []Note, slug string) (Note, error) {
	for _, n := range notes {
		if n.Slug == slug {
			return n, nil
		}
	}
	return Note{}, fmt.Errorf("%s: %w", slug, ErrNotFound)
}
