// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

// State is the coordinator's position in the turn protocol.
type State int

const (
	// Idle accepts a new submission.
	Idle State = iota
	// AwaitingUserRender means the user bubble is queued for the UI goroutine.
	AwaitingUserRender
	// AwaitingResponder means the user bubble is on screen and the reply is pending.
	AwaitingResponder
	// RenderingReply means the reply bubble is being placed.
	RenderingReply
	// Closing is terminal.
	Closing
)

var stateNames = [...]string{
	Idle:               "idle",
	AwaitingUserRender: "awaiting_user_render",
	AwaitingResponder:  "awaiting_responder",
	RenderingReply:     "rendering_reply",
	Closing:            "closing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Busy reports whether a turn is in flight.
func (s State) Busy() bool {
	return s == AwaitingUserRender || s == AwaitingResponder || s == RenderingReply
}
