// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbubbles/internal/turn"
)

// =============================================================================
// PROGRAM BRIDGE
// =============================================================================

// Bridge is a turn.UIThread that runs posted functions inside the Bubble Tea
// Update loop.
//
// Program.Send blocks until Update receives the message, and Post is called
// from Update itself, so sends go through a turn.Loop that keeps them in
// order without blocking the caller.
type Bridge struct {
	loop *turn.Loop
	once sync.Once
	send func(tea.Msg)
}

// NewBridge creates a bridge. Posts queue up until Attach is called.
func NewBridge() *Bridge {
	return &Bridge{loop: turn.NewLoop()}
}

// Attach starts delivering posted functions through send, usually a
// Program's Send method. Only the first call has an effect.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.once.Do(func() {
		b.send = send
		b.loop.Start()
	})
}

// Post implements turn.UIThread.
func (b *Bridge) Post(fn func()) {
	b.loop.Post(func() {
		b.send(uiTaskMsg{fn: fn})
	})
}

// Stop drops functions posted from now on.
func (b *Bridge) Stop() {
	b.loop.Stop()
}

var _ turn.UIThread = (*Bridge)(nil)
