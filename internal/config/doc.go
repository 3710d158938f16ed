// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatbubbles.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, validation and file watching.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ResponderConfig: which responder answers and how to reach it
//   - LayoutConfig: bubble geometry in logical units
//   - UIConfig: theme and terminal cell mapping
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATBUBBLES_*)
//   - ~/.chatbubbles/config.toml
//   - ~/.chatbubbles/config.json
//   - Built-in defaults
//
// Files are decoded over the defaults, so keys missing from a file keep their
// default value. first_message is the exception worth knowing about: leaving
// it out keeps the welcome message, while first_message = "" disables it.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	token := cfg.TerminationToken
package config
