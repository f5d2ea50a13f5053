// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the backend HTTP API the terminal talks to.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"pkt.systems/pslog"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// ServiceName is reported by /health.
	ServiceName = "tom-agent"

	// MaxMessageCount is the maximum number of turns in a chat request.
	MaxMessageCount = 100

	shutdownTimeout = 5 * time.Second
)

// ============================================================================
// SERVER
// ============================================================================

// Responder produces assistant replies for a conversation.
type Responder interface {
	Reply(ctx context.Context, system string, turns []model.ChatTurn) (string, error)
	StreamReply(ctx context.Context, system string, turns []model.ChatTurn, onText func(string)) error
}

// Options configures a Server.
type Options struct {
	Config    config.ServerConfig
	Persona   string
	Responder Responder
	Registry  *commands.Registry
}

// Server is the backend HTTP API.
type Server struct {
	cfg      config.ServerConfig
	registry *commands.Registry
	limiter  *RateLimiter
	mux      *http.ServeMux

	// Hot-reloadable.
	mu        sync.RWMutex
	persona   string
	responder Responder
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	if opts.Persona == "" {
		opts.Persona = config.DefaultSystemPrompt
	}
	if opts.Config.MaxBodyBytes == 0 {
		opts.Config.MaxBodyBytes = config.Default().Server.MaxBodyBytes
	}

	s := &Server{
		cfg:       opts.Config,
		registry:  opts.Registry,
		limiter:   NewRateLimiter(opts.Config.RatePerSecond, opts.Config.RateBurst),
		mux:       http.NewServeMux(),
		persona:   opts.Persona,
		responder: opts.Responder,
	}
	s.setupRoutes()
	return s
}

// SetPersona replaces the system prompt for subsequent requests.
func (s *Server) SetPersona(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = prompt
}

// SetResponder replaces the upstream model for subsequent requests.
func (s *Server) SetResponder(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responder = r
}

func (s *Server) current() (string, Responder) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persona, s.responder
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	for _, prefix := range []string{"", "/.netlify/functions"} {
		s.mux.HandleFunc(prefix+"/chat", s.handleChat)
		s.mux.HandleFunc(prefix+"/shell", s.handleShell)
	}
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		LoggingMiddleware(),
		CORSMiddleware(s.cfg.AllowedOrigin),
		RateLimitMiddleware(s.limiter),
		BodyLimitMiddleware(s.cfg.MaxBodyBytes),
	)(s.mux)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := pslog.Ctx(ctx)
	server := &http.Server{
		Handler:           s.Handler(),
		ErrorLog:          pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		logger.Info("http server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
