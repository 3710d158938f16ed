// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBridge_DeliversInPostOrder(t *testing.T) {
	b := NewBridge()
	defer b.Stop()

	var order []int
	// Posts made before Attach are queued, not lost.
	b.Post(func() { order = append(order, 1) })

	msgs := make(chan tea.Msg, 8)
	b.Attach(func(msg tea.Msg) { msgs <- msg })
	b.Post(func() { order = append(order, 2) })
	b.Post(func() { order = append(order, 3) })

	for i := 0; i < 3; i++ {
		select {
		case msg := <-msgs:
			task, ok := msg.(uiTaskMsg)
			if !ok {
				t.Fatalf("got %T, want uiTaskMsg", msg)
			}
			task.fn()
		case <-time.After(time.Second):
			t.Fatalf("only %d of 3 tasks delivered", i)
		}
	}

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestBridge_PostDoesNotBlockOnSlowSend(t *testing.T) {
	b := NewBridge()
	defer b.Stop()

	block := make(chan struct{})
	defer close(block)
	b.Attach(func(tea.Msg) { <-block })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Post(func() {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked while send was stuck")
	}
}
