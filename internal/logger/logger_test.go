// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	l, err := Open(Config{Level: level, File: path})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_WritesRunID(t *testing.T) {
	l, path := openTemp(t, "info")

	_, err := uuid.Parse(l.RunID)
	require.NoError(t, err)

	l.Component("turn").Info("turn started", "turn", 3)
	content := readLog(t, path)

	assert.Contains(t, content, "run_id="+l.RunID)
	assert.Contains(t, content, "component=turn")
	assert.Contains(t, content, `msg="turn started"`)
	assert.Contains(t, content, "turn=3")
}

func TestLevelFiltering(t *testing.T) {
	l, path := openTemp(t, "warn")

	l.Info("hidden-info")
	l.Warn("shown-warn")
	l.SetLevel("debug")
	l.Debug("shown-debug")

	content := readLog(t, path)
	assert.NotContains(t, content, "hidden-info")
	assert.Contains(t, content, "shown-warn")
	assert.Contains(t, content, "shown-debug")
	assert.Equal(t, slog.LevelDebug, l.Level())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestOpen_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	first, err := Open(Config{File: path})
	require.NoError(t, err)
	first.Info("first-run")
	require.NoError(t, first.Close())

	second, err := Open(Config{File: path})
	require.NoError(t, err)
	second.Info("second-run")
	require.NoError(t, second.Close())

	content := readLog(t, path)
	assert.Contains(t, content, "first-run")
	assert.Contains(t, content, "second-run")
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 4, strings.Count(content, "\n"), "two init lines plus two messages")
}

func TestDiscardAndDoubleClose(t *testing.T) {
	l := Discard()
	l.Info("nowhere")
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestOpen_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	_, err := Open(Config{File: filepath.Join(blocker, "sub", "x.log")})
	assert.Error(t, err)
}
