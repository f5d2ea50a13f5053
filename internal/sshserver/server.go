// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sshserver serves the terminal over SSH. Every connection gets its
// own session and Bubble Tea program; nothing is shared between visitors
// except the stateless backend clients.
package sshserver

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gliderssh "github.com/gliderlabs/ssh"
	"github.com/muesli/termenv"
	"pkt.systems/pslog"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/session"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
	"github.com/tomnagengast/tomterm/internal/ui/terminal"
)

// Server exposes the terminal over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	IdleTimeout time.Duration

	// Session configures every visitor's session.
	Session session.Options

	// Theme is "auto", "dark" or "light". Remote backgrounds are not
	// probed, so "auto" means dark.
	Theme    string
	Markdown bool
	WordWrap int

	logger pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Session.Registry == nil {
		s.Session.Registry = commands.NewRegistry()
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:        s.Addr,
		Handler:     s.handleSession,
		IdleTimeout: s.IdleTimeout,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()
	s.logger.Info("ssh server listening", "addr", s.addr())

	select {
	case <-ctx.Done():
		_ = server.Close()
		s.logger.Info("ssh server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) addr() string {
	if s.Listener != nil {
		return s.Listener.Addr().String()
	}
	return s.Addr
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger.With("remote", sess.RemoteAddr().String())
	if id := sess.Context().SessionID(); id != "" {
		log = log.With("ssh_session", id)
	}

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		_ = sess.Exit(1)
		return
	}

	ctx := pslog.ContextWithLogger(sess.Context(), log)
	term := session.New(ctx, s.Session)
	log = log.With("session", term.ID())
	log.Info("ssh session opened", "term", pty.Term, "user", sess.User())

	renderer := lipgloss.NewRenderer(sess)
	renderer.SetColorProfile(colorProfile(pty.Term))
	theme := styles.NewTheme(renderer, styles.Resolve(s.Theme, nil))

	view := terminal.New(ctx, terminal.Options{
		Session:   term,
		Completer: commands.NewCompleter(s.Session.Registry),
		Theme:     theme,
		Markdown:  s.Markdown,
		WordWrap:  s.WordWrap,
	})
	term.Open()

	program := tea.NewProgram(view,
		tea.WithInput(sess),
		tea.WithOutput(sess),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	go func() {
		program.Send(tea.WindowSizeMsg{Width: pty.Window.Width, Height: pty.Window.Height})
		for {
			select {
			case <-ctx.Done():
				return
			case win, ok := <-winCh:
				if !ok {
					return
				}
				program.Send(tea.WindowSizeMsg{Width: win.Width, Height: win.Height})
			}
		}
	}()

	_, err := program.Run()
	view.Release()
	term.Close()
	term.Wait()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Warn("ssh session ended with error", "err", err)
	}
	_ = sess.Exit(0)
	log.Info("ssh session closed")
}

// colorProfile maps the client's TERM to a color profile.
func colorProfile(term string) termenv.Profile {
	switch {
	case strings.Contains(term, "truecolor"), strings.Contains(term, "24bit"),
		strings.Contains(term, "kitty"), strings.Contains(term, "ghostty"):
		return termenv.TrueColor
	case strings.Contains(term, "256color"):
		return termenv.ANSI256
	case term == "" || term == "dumb":
		return termenv.Ascii
	default:
		return termenv.ANSI
	}
}
