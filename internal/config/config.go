// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tomterm.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tomnagengast/tomterm/internal/fileutil"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tomterm configuration.
type Config struct {
	// Chat client settings (terminal side)
	Chat ChatConfig `toml:"chat"`

	// Shell endpoint settings (terminal side)
	Shell ShellConfig `toml:"shell"`

	// Backend HTTP server
	Server ServerConfig `toml:"server"`

	// Upstream LLM used by the backend
	Ollama OllamaConfig `toml:"ollama"`

	// Persona served by the backend
	Persona PersonaConfig `toml:"persona"`

	// SSH presentation
	SSH SSHConfig `toml:"ssh"`

	// UI settings
	UI UIConfig `toml:"ui"`
}

// ChatConfig configures the remote chat client.
type ChatConfig struct {
	Endpoint    string `toml:"endpoint"`
	Stream      bool   `toml:"stream"`
	TimeoutSecs int    `toml:"timeout_secs"` // 0 = no timeout
}

// Timeout returns the request timeout; zero means none.
func (c ChatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ShellConfig configures the remote shell mode.
type ShellConfig struct {
	// Remote forwards commands the local registry does not know
	Remote   bool   `toml:"remote"`
	Endpoint string `toml:"endpoint"`
	Stream   bool   `toml:"stream"`
}

// ServerConfig configures the backend HTTP server.
type ServerConfig struct {
	Addr           string  `toml:"addr"`
	RatePerSecond  float64 `toml:"rate_per_second"` // 0 disables rate limiting
	RateBurst      int     `toml:"rate_burst"`
	MaxBodyBytes   int64   `toml:"max_body_bytes"`
	AllowedOrigin  string  `toml:"allowed_origin"`
	ReadTimeoutSec int     `toml:"read_timeout_secs"`
}

// OllamaConfig configures the upstream model.
type OllamaConfig struct {
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// PersonaConfig configures the assistant persona.
type PersonaConfig struct {
	// SystemPrompt replaces the built-in prompt when set
	SystemPrompt string `toml:"system_prompt"`
}

// Prompt returns the configured system prompt or the built-in one.
func (p PersonaConfig) Prompt() string {
	if strings.TrimSpace(p.SystemPrompt) != "" {
		return p.SystemPrompt
	}
	return DefaultSystemPrompt
}

// SSHConfig configures the SSH presentation.
type SSHConfig struct {
	Addr        string `toml:"addr"`
	HostKeyPath string `toml:"host_key_path"` // default: <config dir>/ssh_host_ed25519_key
	IdleSecs    int    `toml:"idle_secs"`
}

// UIConfig configures the terminal presentations.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme     string `toml:"theme"`
	WordWrap  int    `toml:"word_wrap"`
	Markdown  bool   `toml:"markdown"`
	HistoryDB string `toml:"history_db"` // default: <config dir>/prefs.db
}

// Themes accepted by UIConfig.Theme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			Endpoint: "http://127.0.0.1:8787/chat",
			Stream:   true,
		},
		Shell: ShellConfig{
			Endpoint: "http://127.0.0.1:8787/shell",
			Stream:   true,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8787",
			RatePerSecond:  2,
			RateBurst:      10,
			MaxBodyBytes:   1 << 20,
			AllowedOrigin:  "*",
			ReadTimeoutSec: 30,
		},
		Ollama: OllamaConfig{
			URL:       "http://127.0.0.1:11434",
			Model:     "llama3.2",
			MaxTokens: 1024,
		},
		SSH: SSHConfig{
			Addr:     "127.0.0.1:2222",
			IdleSecs: 900,
		},
		UI: UIConfig{
			Theme:    ThemeAuto,
			WordWrap: 80,
			Markdown: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tomterm configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TOMTERM_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tomterm"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataPath returns the path of a file inside the config directory.
func DataPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the default config file if present, then applies environment
// overrides and validates.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file yields the
// defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values that have no meaningful zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Chat.Endpoint == "" {
		c.Chat.Endpoint = defaults.Chat.Endpoint
	}
	if c.Shell.Endpoint == "" {
		c.Shell.Endpoint = defaults.Shell.Endpoint
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = defaults.Server.RateBurst
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Ollama.MaxTokens == 0 {
		c.Ollama.MaxTokens = defaults.Ollama.MaxTokens
	}
	if c.SSH.Addr == "" {
		c.SSH.Addr = defaults.SSH.Addr
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
// The file is replaced atomically so a running watcher never reads a
// partial write.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# tomterm configuration file\n")
	buf.WriteString("# Generated by tomterm - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := fileutil.WriteAtomic(path, buf.Bytes(), 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	checkURL := func(field, raw string) {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid http(s) URL %q", raw)})
		}
	}
	checkURL("chat.endpoint", c.Chat.Endpoint)
	checkURL("shell.endpoint", c.Shell.Endpoint)
	checkURL("ollama.url", c.Ollama.URL)

	if c.Chat.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "chat.timeout_secs", Message: "must be >= 0"})
	}
	if c.Server.RatePerSecond < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_per_second", Message: "must be >= 0"})
	}
	if c.Server.RateBurst < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_burst", Message: "must be >= 0"})
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, ValidationError{Field: "server.max_body_bytes", Message: "must be > 0"})
	}
	if c.Ollama.MaxTokens < 0 {
		errs = append(errs, ValidationError{Field: "ollama.max_tokens", Message: "must be > 0"})
	}
	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		errs = append(errs, ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q (auto, dark, light)", c.UI.Theme)})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - TOMTERM_CHAT_ENDPOINT: overrides chat.endpoint
//   - TOMTERM_STREAM: overrides chat.stream
//   - TOMTERM_REMOTE_SHELL: overrides shell.remote
//   - TOMTERM_SHELL_ENDPOINT: overrides shell.endpoint
//   - TOMTERM_ADDR: overrides server.addr
//   - TOMTERM_SSH_ADDR: overrides ssh.addr
//   - TOMTERM_OLLAMA_URL: overrides ollama.url
//   - TOMTERM_MODEL: overrides ollama.model
//   - TOMTERM_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TOMTERM_CHAT_ENDPOINT"); v != "" {
		c.Chat.Endpoint = v
	}
	if v := os.Getenv("TOMTERM_STREAM"); v != "" {
		c.Chat.Stream = parseBool(v)
	}
	if v := os.Getenv("TOMTERM_REMOTE_SHELL"); v != "" {
		c.Shell.Remote = parseBool(v)
	}
	if v := os.Getenv("TOMTERM_SHELL_ENDPOINT"); v != "" {
		c.Shell.Endpoint = v
	}
	if v := os.Getenv("TOMTERM_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TOMTERM_SSH_ADDR"); v != "" {
		c.SSH.Addr = v
	}
	if v := os.Getenv("TOMTERM_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("TOMTERM_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("TOMTERM_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Load failures fall back to defaults.
func Global() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		loaded = Default()
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		globalConfig = loaded
	}
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
