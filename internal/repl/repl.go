// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repl runs a session as a plain line-oriented prompt, for
// terminals (or pipes) where the full-screen view is unwanted.
package repl

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/model"
	"github.com/tomnagengast/tomterm/internal/session"
)

// =============================================================================
// LINE READER
// =============================================================================

// LineReader reads one edited line at a time.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// ErrAborted is returned by a LineReader when the user presses Ctrl+C at
// the prompt.
var ErrAborted = liner.ErrPromptAborted

// NewLiner returns a LineReader backed by liner with tab completion from
// completer.
func NewLiner(completer *commands.Completer) LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if completer != nil {
		line.SetCompleter(func(input string) []string {
			cs := completer.Complete(input)
			out := make([]string, 0, len(cs))
			for _, c := range cs {
				out = append(out, c.Value)
			}
			return out
		})
	}
	return line
}

// HistoryStore persists submitted lines.
type HistoryStore interface {
	AddHistory(ctx context.Context, line string) error
	History(ctx context.Context, limit int) ([]string, error)
}

// =============================================================================
// LOOP
// =============================================================================

// Options configures Run.
type Options struct {
	Session *session.Session
	Reader  LineReader
	Output  io.Writer

	// Store is optional.
	Store HistoryStore

	// Interrupts delivers Ctrl+C pressed while a request is pending. Nil
	// subscribes to os.Interrupt.
	Interrupts <-chan os.Signal
}

// Run opens the session and reads lines until the session closes, input
// ends or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil || opts.Reader == nil {
		return errors.New("repl: session and reader are required")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	log := logx.Ctx(ctx)
	sess := opts.Session

	interrupts := opts.Interrupts
	if interrupts == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		interrupts = ch
	}

	if opts.Store != nil {
		lines, err := opts.Store.History(ctx, 0)
		if err != nil {
			log.Warn("history load failed", "err", err)
		}
		for _, l := range lines {
			opts.Reader.AppendHistory(l)
		}
	}

	p := newPrinter(opts.Output)
	unsubscribe := sess.Subscribe(p.update)
	defer unsubscribe()
	defer sess.Wait()
	defer sess.Close()

	sess.Open()
	for {
		snap := sess.Snapshot()
		if !snap.Open || ctx.Err() != nil {
			return nil
		}

		input, err := opts.Reader.Prompt(snap.Prompt())
		if errors.Is(err, ErrAborted) {
			if snap.Mode == model.ModeShell {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			_, _ = io.WriteString(opts.Output, "\n")
			return nil
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(input) != "" {
			opts.Reader.AppendHistory(input)
			if opts.Store != nil {
				if err := opts.Store.AddHistory(ctx, input); err != nil {
					log.Warn("history save failed", "err", err)
				}
			}
		}

		sess.Submit(input)
		waitWithInterrupts(ctx, sess, interrupts)
	}
}

// waitWithInterrupts blocks until the pending request, if any, completes.
// An interrupt or ctx cancellation cancels it.
func waitWithInterrupts(ctx context.Context, sess *session.Session, interrupts <-chan os.Signal) {
	done := make(chan struct{})
	go func() {
		sess.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return
		case <-interrupts:
			sess.Cancel()
		case <-ctx.Done():
			sess.Cancel()
			<-done
			return
		}
	}
}
