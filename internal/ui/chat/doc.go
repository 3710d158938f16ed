// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat window of the chatbubbles TUI.

The package implements a Bubble Tea model around the bubble transcript: a
surface.Canvas drawn by the layout engine, a textarea input box and a status
bar. The bubbletea Update loop is the UI thread of the turn coordinator.

# Key Components

## Model (model.go)

The Model owns the canvas, the input box and the spinner, and forwards
submissions through the input gateway to the coordinator.

## Bridge (bridge.go)

Bridge implements turn.UIThread on top of Program.Send so that coordinator
work runs inside Update, in the order it was posted.

## View Rendering (view.go)

	header     - window title
	canvas     - bubble transcript, pinned to the newest bubble
	input      - textarea, dimmed while a turn is in flight
	status bar - spinner, notices, key hints

# Keyboard Shortcuts

	Enter          - submit
	Alt+Enter, C-j - insert a newline
	PgUp/PgDn      - scroll the transcript
	C-c            - quit (same path as the termination token)
*/
package chat
