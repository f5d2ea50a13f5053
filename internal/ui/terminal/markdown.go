// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders assistant replies with glamour and caches the
// result per transcript slot, since the whole transcript is re-rendered on
// every update.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[int]renderedReply
}

type renderedReply struct {
	content string
	out     string
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{cache: make(map[int]renderedReply)}
}

// reset drops the renderer and every cached result.
func (r *markdownRenderer) reset() {
	r.renderer = nil
	r.cache = make(map[int]renderedReply)
}

func (r *markdownRenderer) render(index int, content, style string, width int) (string, bool) {
	if style != r.style || width != r.width {
		r.reset()
		r.style, r.width = style, width
	}
	if cached, ok := r.cache[index]; ok && cached.content == content {
		return cached.out, true
	}
	if r.renderer == nil {
		opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
		if width > 0 {
			opts = append(opts, glamour.WithWordWrap(width))
		}
		tr, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return "", false
		}
		r.renderer = tr
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return "", false
	}
	out = strings.Trim(out, "\n")
	r.cache[index] = renderedReply{content: content, out: out}
	return out, true
}
