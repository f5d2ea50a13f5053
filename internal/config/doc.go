// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tomterm.
//
// Configuration file location:
//   - ~/.tomterm/config.toml (TOMTERM_HOME overrides the directory)
//   - Built-in defaults
//
// Environment variables (TOMTERM_*) are applied after the file, then the
// result is validated.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := chat.New(chat.Config{Endpoint: cfg.Chat.Endpoint, Stream: cfg.Chat.Stream})
//
// Watch reloads the file when it changes on disk:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config) { srv.Apply(cfg) })
package config
