// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Config describes where and how much to log.
type Config struct {
	// Level is "debug", "info", "warn" or "error". Unknown values mean info.
	Level string
	// File is the log path. Empty discards all output.
	File string
}

// Logger is a file-backed slog.Logger tagged with a run id.
type Logger struct {
	*slog.Logger

	RunID string
	Path  string

	level *slog.LevelVar
	mu    sync.Mutex
	file  *os.File
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open creates the log directory if needed and opens cfg.File for append.
func Open(cfg Config) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	l := &Logger{
		RunID: uuid.NewString(),
		Path:  cfg.File,
		level: level,
	}

	var w io.Writer = io.Discard
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return nil, fmt.Errorf("logger: create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file %s: %w", cfg.File, err)
		}
		l.file = f
		w = f
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	l.Logger = slog.New(handler).With(slog.String("run_id", l.RunID))
	l.Logger.Info("logger initialized", "path", cfg.File, "level", level.Level().String())
	return l, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	l, _ := Open(Config{})
	return l
}

// SetLevel changes the minimum level of every logger derived from l.
func (l *Logger) SetLevel(name string) {
	l.level.Set(ParseLevel(name))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Component returns a logger with the component attribute attached.
func (l *Logger) Component(name string) *slog.Logger {
	return l.Logger.With(slog.String("component", name))
}

// Close closes the log file. It is safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
