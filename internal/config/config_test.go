// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Chat.Stream)
	assert.False(t, cfg.Shell.Remote)
	assert.Zero(t, cfg.Chat.Timeout())
	assert.Equal(t, DefaultSystemPrompt, cfg.Persona.Prompt())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Chat.Endpoint, cfg.Chat.Endpoint)
}

func TestLoadTOMLKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[chat]
stream = false

[shell]
remote = true

[persona]
system_prompt = "be brief"
`), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.False(t, cfg.Chat.Stream)
	assert.True(t, cfg.Shell.Remote)
	assert.Equal(t, "be brief", cfg.Persona.Prompt())
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TOMTERM_CHAT_ENDPOINT", "https://example.com/chat")
	t.Setenv("TOMTERM_STREAM", "false")
	t.Setenv("TOMTERM_REMOTE_SHELL", "1")
	t.Setenv("TOMTERM_THEME", "LIGHT")
	t.Setenv("TOMTERM_MODEL", "qwen")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "https://example.com/chat", cfg.Chat.Endpoint)
	assert.False(t, cfg.Chat.Stream)
	assert.True(t, cfg.Shell.Remote)
	assert.Equal(t, ThemeLight, cfg.UI.Theme)
	assert.Equal(t, "qwen", cfg.Ollama.Model)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Chat.Endpoint = "ftp://nowhere"
	cfg.UI.Theme = "neon"
	cfg.Chat.TimeoutSecs = -1

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Shell.Remote = true
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if filepath.Separator == '/' {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.True(t, loaded.Shell.Remote)
}

func TestConfigDirHonoursHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TOMTERM_HOME", dir)
	got, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), got)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o600))

	select {
	case cfg := <-changes:
		assert.Equal(t, ThemeLight, cfg.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}
