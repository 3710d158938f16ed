// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Full-screen chat window.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbubbles/internal/config"
	"github.com/jeranaias/chatbubbles/internal/logger"
	"github.com/jeranaias/chatbubbles/internal/turn"
	"github.com/jeranaias/chatbubbles/internal/ui/chat"
	"github.com/jeranaias/chatbubbles/internal/ui/styles"
)

// runTUI runs the chat window until the user quits, then shuts the
// coordinator down within the configured join timeout.
func runTUI(ctx context.Context, flags *globalFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := RequiresTTY("open the chat window (try \"chatbubbles plain\")"); err != nil {
		return err
	}

	cfg, err := flags.load()
	if err != nil {
		return err
	}

	log, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer log.Close()

	theme := styles.NewTheme(cfg.UI.Theme)
	bridge := chat.NewBridge()

	// The canvas is sized by the first WindowSizeMsg.
	c, err := newCore(cfg, log, bridge, theme.Decor(), 0, 0, nil)
	if err != nil {
		return err
	}

	m, err := chat.New(chat.Options{
		Title:        cfg.Title,
		FirstMessage: cfg.InitialMessage(),
		Badge:        responderBadge(cfg),
		Coordinator:  c.coord,
		Gateway:      c.gateway,
		Engine:       c.engine,
		Canvas:       c.canvas,
		Theme:        theme,
		Mouse:        cfg.UI.Mouse,
		Logger:       log.Component("ui"),
	})
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	bridge.Attach(p.Send)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go watchSettings(watchCtx, flags, log, p.Send)

	log.Info("chat window opened", "title", cfg.Title, "theme", theme.Mode)
	_, runErr := p.Run()
	stopWatch()

	shutdownErr := c.coord.Shutdown(cfg.JoinTimeout())
	bridge.Stop()
	log.Info("chat window closed",
		"turns", c.coord.Turns(),
		"messages", c.store.Len(),
	)

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("error running chat window: %w", runErr)
	}
	if errors.Is(shutdownErr, turn.ErrShutdownTimeout) {
		log.Warn("responder still running at exit", "timeout", cfg.JoinTimeout())
	}
	return nil
}

// watchSettings forwards config file edits to the running window. Flags
// still win over the file.
func watchSettings(ctx context.Context, flags *globalFlags, log *logger.Logger, send func(tea.Msg)) {
	path := flags.path()
	if path == "" {
		return
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		log.Debug("config watch skipped", "path", path, "error", err)
		return
	}

	onChange := func(cfg *config.Config) {
		flags.apply(cfg)
		if err := cfg.Validate(); err != nil {
			log.Warn("reloaded config rejected", "error", err)
			return
		}
		log.SetLevel(cfg.Log.Level)
		log.Info("config reloaded", "path", path)
		send(chat.SettingsMsg{
			Theme:            cfg.UI.Theme,
			TerminationToken: cfg.TerminationToken,
		})
	}
	onError := func(err error) {
		log.Warn("config reload failed", "error", err)
	}

	if err := config.Watch(ctx, path, 0, onChange, onError); err != nil {
		log.Warn("config watch stopped", "error", err)
	}
}
