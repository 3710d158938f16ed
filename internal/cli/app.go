// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Assembles the chat core from configuration.
//
// Both front ends share this wiring; they differ only in which UIThread
// owns the canvas.

package cli

import (
	"fmt"

	"github.com/jeranaias/chatbubbles/internal/config"
	"github.com/jeranaias/chatbubbles/internal/input"
	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/logger"
	"github.com/jeranaias/chatbubbles/internal/ollama"
	"github.com/jeranaias/chatbubbles/internal/responder"
	"github.com/jeranaias/chatbubbles/internal/surface"
	"github.com/jeranaias/chatbubbles/internal/transcript"
	"github.com/jeranaias/chatbubbles/internal/turn"
)

// core is one transcript with its layout, surface and protocol.
type core struct {
	cfg     *config.Config
	canvas  *surface.Canvas
	engine  *layout.Engine
	store   *transcript.Store
	coord   *turn.Coordinator
	gateway *input.Gateway
}

// canvasConfig maps the [ui] section onto cell geometry.
func canvasConfig(cfg *config.Config) surface.CanvasConfig {
	return surface.CanvasConfig{
		CellWidth:  cfg.UI.CellWidth,
		CellHeight: cfg.UI.CellHeight,
		Gutter:     cfg.UI.Gutter,
	}
}

// layoutConfig maps the [layout] section onto the engine geometry. Padding
// and pointer size are not configurable.
func layoutConfig(cfg *config.Config) layout.Config {
	lc := layout.DefaultConfig()
	lc.Baseline = cfg.Layout.Baseline
	lc.Gap = cfg.Layout.Gap
	lc.LeftMargin = cfg.Layout.LeftMargin
	lc.RightMargin = cfg.Layout.RightMargin
	lc.RightFloor = cfg.Layout.RightFloor
	lc.WrapInset = cfg.Layout.WrapInset
	lc.WrapFloor = cfg.Layout.WrapFloor
	lc.AvatarOffset = cfg.Layout.AvatarOffset
	return lc
}

// newResponder builds the reply producer named by [responder].
func newResponder(cfg *config.Config) (turn.Responder, error) {
	var client *ollama.Client
	if responder.NormalizeKind(cfg.Responder.Kind) == responder.KindOllama {
		client = ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL:      cfg.Responder.OllamaURL,
			Timeout:      cfg.ResponderTimeout(),
			DefaultModel: cfg.Responder.Model,
		})
	}
	return responder.New(cfg.Responder.Kind, client, responder.OllamaConfig{
		Model:             cfg.Responder.Model,
		SystemPrompt:      cfg.Responder.SystemPrompt,
		Timeout:           cfg.ResponderTimeout(),
		RequestsPerMinute: cfg.Responder.RequestsPerMinute,
		HistoryLimit:      cfg.Responder.HistoryLimit,
	})
}

// responderBadge describes the responder for the header.
func responderBadge(cfg *config.Config) string {
	kind := responder.NormalizeKind(cfg.Responder.Kind)
	if kind == responder.KindOllama {
		return "ollama " + cfg.Responder.Model
	}
	return kind
}

// newCore wires a canvas of cols x rows cells to a coordinator whose surface
// work runs on ui. onTerminate runs when the termination token is submitted.
func newCore(cfg *config.Config, log *logger.Logger, ui turn.UIThread, decor layout.Decor, cols, rows int, onTerminate func()) (*core, error) {
	resp, err := newResponder(cfg)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	canvas := surface.NewCanvas(cols, rows, canvasConfig(cfg))
	engine := layout.New(canvas, layoutConfig(cfg), decor)
	store := transcript.NewStore()

	coord, err := turn.New(turn.Options{
		Store:     store,
		Engine:    engine,
		Responder: resp,
		UI:        ui,
		Logger:    log.Component("turn"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	gateway := input.NewGateway(coord, cfg.TerminationToken, onTerminate)
	gateway.SetLogger(log.Component("input"))

	log.Info("core ready",
		"responder", cfg.Responder.Kind,
		"cols", cols,
		"rows", rows,
	)

	return &core{
		cfg:     cfg,
		canvas:  canvas,
		engine:  engine,
		store:   store,
		coord:   coord,
		gateway: gateway,
	}, nil
}

// openLogger opens the log file named by [log], defaulting to the file in
// the config directory.
func openLogger(cfg *config.Config) (*logger.Logger, error) {
	path := cfg.Log.File
	if path == "" {
		var err error
		path, err = config.DefaultLogPath()
		if err != nil {
			return nil, err
		}
	}
	return logger.Open(logger.Config{Level: cfg.Log.Level, File: path})
}
