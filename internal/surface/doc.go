// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package surface defines the drawing target used by the transcript layout.
//
// Everything that places bubbles talks to the Surface interface and never to
// a concrete toolkit. Coordinates are logical units; a concrete surface decides
// how a unit maps to pixels or terminal cells.
//
// # Implementations
//
//   - Canvas: a terminal cell canvas rendered with lipgloss
//   - surfacetest.Recorder: a fake that records calls for tests
//
// A Surface is not safe for concurrent mutation. All calls must happen on the
// goroutine that owns it (the UI goroutine).
package surface
