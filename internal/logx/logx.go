// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logx holds the structured logging helpers shared by every
// presentation and the backend.
package logx

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"pkt.systems/pslog"
)

type contextKey int

const (
	sessionKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// New builds the process logger from the environment, writing to w.
func New(w io.Writer) pslog.Logger {
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(w),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
}

// Install binds logger to ctx and routes the stdlib log package into it.
func Install(ctx context.Context, logger pslog.Logger) context.Context {
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	return pslog.ContextWithLogger(ctx, logger)
}

// OpenFile opens (or creates) a log file under dir for presentations that own
// the terminal and cannot write diagnostics to it.
func OpenFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// WithSession annotates the logger with a session id when available.
func WithSession(ctx context.Context, sessionID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if sessionID == "" {
		return log
	}
	if current, ok := ctx.Value(sessionKey).(string); ok && current == sessionID {
		return log
	}
	return log.With("session", sessionID)
}

// ContextWithSession attaches a session-scoped logger and marker to ctx.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	log := WithSession(ctx, sessionID)
	ctx = pslog.ContextWithLogger(ctx, log)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// WithRequest annotates the logger with an HTTP request id.
func WithRequest(log pslog.Logger, requestID string) pslog.Logger {
	if requestID != "" {
		log = log.With("request_id", requestID)
	}
	return log
}
