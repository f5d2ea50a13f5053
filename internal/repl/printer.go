// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/tomnagengast/tomterm/internal/model"
	"github.com/tomnagengast/tomterm/internal/session"
)

// printer writes session snapshots to a line-oriented terminal. Finished
// messages are printed once; the message in progress is extended in place
// as chunks arrive.
type printer struct {
	mu  sync.Mutex
	out *termenv.Output

	// done counts messages fully printed.
	done int
	// partial is what has been printed of message done, if any.
	partial     string
	partialKind model.MessageKind
	inProgress  bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{out: termenv.NewOutput(w)}
}

func (p *printer) ansi() bool {
	return p.out.Profile != termenv.Ascii
}

// update prints whatever changed since the last snapshot.
func (p *printer) update(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := snap.History
	if len(h) < p.done || (len(h) == 0 && (p.done > 0 || p.inProgress)) {
		if len(h) == 0 && p.ansi() {
			p.out.ClearScreen()
			p.out.MoveCursor(1, 1)
		}
		p.reset(len(h))
	}

	if p.inProgress {
		if p.done < len(h) && h[p.done].Kind == p.partialKind && strings.HasPrefix(h[p.done].Content, p.partial) {
			p.write(h[p.done].Kind, strings.TrimPrefix(h[p.done].Content, p.partial))
			p.partial = h[p.done].Content
			if p.done < len(h)-1 || !snap.Loading {
				p.finish()
			}
		} else {
			p.abandon()
		}
	}

	for !p.inProgress && p.done < len(h) {
		msg := h[p.done]
		if msg.Kind == model.KindInput {
			// The line editor already echoed it.
			p.done++
			continue
		}
		p.write(msg.Kind, msg.Content)
		p.partial, p.partialKind, p.inProgress = msg.Content, msg.Kind, true
		if p.done < len(h)-1 || !snap.Loading {
			p.finish()
		}
	}
}

// finish ends the message in progress with a newline.
func (p *printer) finish() {
	if p.partialKind == model.KindThinking && p.ansi() {
		// Replaced in place by whatever follows.
		p.eraseLine()
	} else {
		_, _ = io.WriteString(p.out, "\n")
	}
	p.done++
	p.partial, p.inProgress = "", false
}

// abandon drops a message in progress that was replaced or removed.
func (p *printer) abandon() {
	if p.partialKind == model.KindThinking && p.ansi() {
		p.eraseLine()
	} else if p.partial != "" {
		_, _ = io.WriteString(p.out, "\n")
	}
	p.partial, p.inProgress = "", false
}

func (p *printer) reset(done int) {
	p.done = done
	p.partial, p.inProgress = "", false
}

func (p *printer) eraseLine() {
	_, _ = io.WriteString(p.out, "\r")
	p.out.ClearLine()
}

func (p *printer) write(kind model.MessageKind, text string) {
	if text == "" {
		return
	}
	s := p.out.String(text)
	switch {
	case kind == model.KindSystem:
		s = s.Italic()
	case kind == model.KindThinking:
		s = s.Faint()
	case strings.HasPrefix(text, "Error: "):
		s = s.Foreground(p.out.Color("1"))
	}
	_, _ = io.WriteString(p.out, s.String())
}
