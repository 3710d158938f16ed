// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the chrome around the bubble transcript.

	Header    - title bar with the responder badge (header.go)
	StatusBar - reply progress, notices, errors and key hints (statusbar.go)

Components are plain structs with a View method. The chat model sets their
fields before each render; they hold no Bubble Tea state of their own.
*/
package components
