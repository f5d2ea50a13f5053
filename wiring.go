// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"

	"github.com/muesli/termenv"

	"github.com/tomnagengast/tomterm/internal/chat"
	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/ollama"
	"github.com/tomnagengast/tomterm/internal/prefs"
	"github.com/tomnagengast/tomterm/internal/session"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
)

// sessionOptions builds the collaborators every session shares.
func sessionOptions(cfg *config.Config) session.Options {
	opts := session.Options{
		Registry: commands.NewRegistry(),
		Chat: chat.New(chat.Config{
			Endpoint: cfg.Chat.Endpoint,
			Stream:   cfg.Chat.Stream,
			Timeout:  cfg.Chat.Timeout(),
		}),
	}
	if cfg.Shell.Remote {
		opts.Shell = chat.NewShell(chat.ShellConfig{
			Endpoint: cfg.Shell.Endpoint,
			Stream:   cfg.Shell.Stream,
			Timeout:  cfg.Chat.Timeout(),
		})
	}
	return opts
}

// newResponder builds the upstream model client for the backend.
func newResponder(cfg *config.Config) *ollama.Client {
	oc := ollama.DefaultConfig()
	oc.BaseURL = cfg.Ollama.URL
	oc.DefaultModel = cfg.Ollama.Model
	oc.MaxTokens = cfg.Ollama.MaxTokens
	return ollama.NewClientWithConfig(oc)
}

// openPrefs opens the preference store, logging and returning nil when it
// is unavailable; presentations work without it.
func openPrefs(ctx context.Context, cfg *config.Config) *prefs.Store {
	path := cfg.UI.HistoryDB
	if path == "" {
		p, err := config.DataPath("prefs.db")
		if err != nil {
			logx.Ctx(ctx).Warn("prefs path unavailable", "err", err)
			return nil
		}
		path = p
	}
	store, err := prefs.Open(path)
	if err != nil {
		logx.Ctx(ctx).Warn("prefs unavailable", "path", path, "err", err)
		return nil
	}
	return store
}

// resolveTheme picks the theme: an explicit config value wins, then the
// saved preference, then the terminal background.
func resolveTheme(ctx context.Context, cfg *config.Config, store *prefs.Store) string {
	if cfg.UI.Theme != config.ThemeAuto {
		return styles.Resolve(cfg.UI.Theme, nil)
	}
	detected := styles.DetectTheme(termenv.DefaultOutput())
	if store == nil {
		return detected
	}
	return store.Theme(ctx, detected)
}
