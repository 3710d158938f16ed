// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package turn runs one request/response exchange at a time.

A turn starts when the operator submits text. Two things then happen
concurrently:

  - the user message is appended, laid out and rendered on the UI goroutine;
  - the responder is called on its own goroutine.

The responder goroutine blocks on the turn's rendered channel before it hands
the reply back to the UI goroutine, so a reply bubble can never be placed
before the bubble that triggered it, however fast the responder is.

# States

	Idle -> AwaitingUserRender -> AwaitingResponder -> RenderingReply -> Idle

Closing is entered from any state by Close and is final.

# Threading

All transcript and surface mutation happens inside functions passed to
UIThread.Post. Loop is a goroutine-backed UIThread for line mode and tests;
the terminal UI posts through its bubbletea program instead.

# Shutdown

Close cancels the root context, which every turn context derives from.
Wait joins the responder goroutines with a deadline and reports
ErrShutdownTimeout instead of killing anything.
*/
package turn
