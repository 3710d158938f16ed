// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
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

// isolate points HOME at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{
		"CHATBUBBLES_TITLE", "CHATBUBBLES_TERMINATION_TOKEN", "CHATBUBBLES_RESPONDER",
		"CHATBUBBLES_OLLAMA_URL", "CHATBUBBLES_MODEL", "CHATBUBBLES_SYSTEM_PROMPT",
		"CHATBUBBLES_THEME", "CHATBUBBLES_MOUSE", "CHATBUBBLES_JOIN_TIMEOUT_MS",
		"CHATBUBBLES_LOG_LEVEL", "CHATBUBBLES_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	// LookupEnv distinguishes unset from empty, so this one must be removed.
	t.Setenv("CHATBUBBLES_FIRST_MESSAGE", "")
	os.Unsetenv("CHATBUBBLES_FIRST_MESSAGE")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "SAMchatbot", cfg.Title)
	require.NotNil(t, cfg.InitialMessage())
	assert.Equal(t, "welcome to ChatBotAI", *cfg.InitialMessage())
	assert.Equal(t, "quit", cfg.TerminationToken)
	assert.Equal(t, "echo", cfg.Responder.Kind)
	assert.Equal(t, 440.0, cfg.Layout.Baseline)
	assert.Equal(t, 700.0, cfg.Layout.RightFloor)
	assert.Equal(t, 2*time.Second, cfg.JoinTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Title, cfg.Title)
	assert.Empty(t, ActivePath())
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoad_TOMLOverDefaults(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".chatbubbles", "config.toml"), `
title = "Support"
termination_token = "bye"

[responder]
kind = "Ollama"
model = "qwen2.5"

[layout]
gap = 4
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Support", cfg.Title)
	assert.Equal(t, "bye", cfg.TerminationToken)
	assert.Equal(t, "ollama", cfg.Responder.Kind, "kind is folded to lower case")
	assert.Equal(t, "qwen2.5", cfg.Responder.Model)
	assert.Equal(t, 4.0, cfg.Layout.Gap)
	// Absent keys keep defaults.
	assert.Equal(t, 440.0, cfg.Layout.Baseline)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Responder.OllamaURL)
	require.NotNil(t, cfg.InitialMessage())
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".chatbubbles", "config.json")
	writeFile(t, path, `{"title": "From JSON", "ui": {"theme": "dark"}}`)

	assert.Equal(t, path, ActivePath())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "From JSON", cfg.Title)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 10.0, cfg.UI.CellWidth)
}

func TestLoad_FirstMessage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *string
	}{
		{"absent keeps welcome", `title = "x"`, strPtr(DefaultFirstMessage)},
		{"empty disables", `first_message = ""`, nil},
		{"custom", `first_message = "hi"`, strPtr("hi")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "c.toml")
			writeFile(t, path, tc.content)

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.InitialMessage())
		})
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "title = ")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CHATBUBBLES_TITLE", "Env")
	t.Setenv("CHATBUBBLES_RESPONDER", "ollama")
	t.Setenv("CHATBUBBLES_JOIN_TIMEOUT_MS", "500")
	t.Setenv("CHATBUBBLES_MOUSE", "false")
	t.Setenv("CHATBUBBLES_FIRST_MESSAGE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Env", cfg.Title)
	assert.Equal(t, "ollama", cfg.Responder.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.JoinTimeout())
	assert.False(t, cfg.UI.Mouse)
	assert.Nil(t, cfg.InitialMessage(), "set-but-empty env disables the first message")
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad kind", func(c *Config) { c.Responder.Kind = "gpt" }, "responder.kind"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"zero cell width", func(c *Config) { c.UI.CellWidth = 0 }, "ui.cell_width"},
		{"negative gutter", func(c *Config) { c.UI.Gutter = -1 }, "ui.gutter"},
		{"negative gap", func(c *Config) { c.Layout.Gap = -1 }, "layout.gap"},
		{"zero wrap floor", func(c *Config) { c.Layout.WrapFloor = 0 }, "layout.wrap_floor"},
		{"negative rpm", func(c *Config) { c.Responder.RequestsPerMinute = -1 }, "responder.requests_per_minute"},
		{"zero join", func(c *Config) { c.Shutdown.JoinTimeoutMs = 0 }, "shutdown.join_timeout_ms"},
		{"ollama without host", func(c *Config) {
			c.Responder.Kind = "ollama"
			c.Responder.OllamaURL = "localhost"
		}, "responder.ollama_url"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestSetDefaults_FillsEmpty(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Equal(t, DefaultTerminationToken, cfg.TerminationToken)
	assert.Equal(t, "echo", cfg.Responder.Kind)
	assert.Equal(t, 2000, cfg.Shutdown.JoinTimeoutMs)
	assert.Nil(t, cfg.FirstMessage, "SetDefaults must not re-enable a disabled first message")
}

// =============================================================================
// GET/SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "auto", v)

	require.NoError(t, cfg.Set("ui.theme", "dark"))
	assert.Equal(t, "dark", cfg.UI.Theme)

	require.NoError(t, cfg.Set("layout.gap", "12.5"))
	assert.Equal(t, 12.5, cfg.Layout.Gap)

	require.NoError(t, cfg.Set("shutdown.join_timeout_ms", "750"))
	assert.Equal(t, 750, cfg.Shutdown.JoinTimeoutMs)

	require.NoError(t, cfg.Set("ui.mouse", "false"))
	assert.False(t, cfg.UI.Mouse)

	require.NoError(t, cfg.Set("first_message", "hello"))
	v, err = cfg.Get("first_message")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = cfg.Get("ui.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("title.sub", "x"))
	_, err = cfg.Get("")
	assert.Error(t, err)
}

// =============================================================================
// SAVE
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg := Default()
	cfg.Title = "Round"
	empty := ""
	cfg.FirstMessage = &empty

	for _, name := range []string{"c.toml", "c.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveAuto(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			if os.PathSeparator == '/' {
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
			}

			loaded, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, "Round", loaded.Title)
			assert.Nil(t, loaded.InitialMessage())
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	*clone.FirstMessage = "changed"
	clone.Title = "changed"

	assert.Equal(t, DefaultFirstMessage, *cfg.FirstMessage)
	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Contains(t, cfg.String(), `title = "SAMchatbot"`)
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `title = "one"`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(c *Config) { changes <- c }, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	cfg := Default()
	cfg.Title = "two"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case c := <-changes:
		assert.Equal(t, "two", c.Title)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func strPtr(s string) *string { return &s }
