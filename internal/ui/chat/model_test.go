// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbubbles/internal/input"
	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/responder"
	"github.com/jeranaias/chatbubbles/internal/surface"
	"github.com/jeranaias/chatbubbles/internal/transcript"
	"github.com/jeranaias/chatbubbles/internal/turn"
	"github.com/jeranaias/chatbubbles/internal/ui/styles"
)

// =============================================================================
// HARNESS
// =============================================================================

// harness drives a Model the way a Program would: coordinator work arrives
// through the Bridge on msgs and is fed back into Update.
type harness struct {
	t      *testing.T
	m      Model
	msgs   chan tea.Msg
	coord  *turn.Coordinator
	store  *transcript.Store
	canvas *surface.Canvas
}

func newHarness(t *testing.T, resp turn.Responder, first *string) *harness {
	t.Helper()

	msgs := make(chan tea.Msg, 64)
	bridge := NewBridge()
	bridge.Attach(func(msg tea.Msg) { msgs <- msg })
	t.Cleanup(bridge.Stop)

	canvas := surface.NewCanvas(0, 0, surface.DefaultCanvasConfig())
	engine := layout.New(canvas, layout.DefaultConfig(), layout.DefaultDecor())
	store := transcript.NewStore()

	coord, err := turn.New(turn.Options{Store: store, Engine: engine, Responder: resp, UI: bridge})
	require.NoError(t, err)
	t.Cleanup(func() { coord.Shutdown(time.Second) })

	gw := input.NewGateway(coord, input.DefaultTerminationToken, nil)

	m, err := New(Options{
		Title:        "SAMchatbot",
		FirstMessage: first,
		Coordinator:  coord,
		Gateway:      gw,
		Engine:       engine,
		Canvas:       canvas,
		Theme:        styles.NewTheme(styles.ModeLight),
		Mouse:        true,
	})
	require.NoError(t, err)

	return &harness{t: t, m: m, msgs: msgs, coord: coord, store: store, canvas: canvas}
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) typeText(s string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) enter() tea.Cmd {
	return h.update(tea.KeyMsg{Type: tea.KeyEnter})
}

func (h *harness) pumpUntil(cond func() bool) {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for !cond() {
		select {
		case msg := <-h.msgs:
			h.update(msg)
		case <-timeout:
			h.t.Fatalf("condition not reached, state=%s, messages=%d", h.coord.State(), h.store.Len())
		}
	}
}

func (h *harness) idleWith(n int) func() bool {
	return func() bool { return h.coord.State() == turn.Idle && h.store.Len() == n }
}

func welcome() *string {
	s := "welcome to ChatBotAI"
	return &s
}

// =============================================================================
// STARTUP
// =============================================================================

func TestModel_NewRequiresCore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestModel_FirstResizeRendersWelcome(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())
	assert.Empty(t, h.m.View(), "nothing to draw before the first size")

	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	require.Equal(t, 1, h.store.Len())
	msgs := h.store.Messages()
	assert.Equal(t, transcript.Bot, msgs[0].Sender)

	view := h.m.View()
	assert.Contains(t, view, "SAMchatbot")
	assert.Contains(t, view, "welcome to ChatBotAI")

	// A second resize must not render the welcome again.
	h.update(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Equal(t, 1, h.store.Len())
}

func TestModel_EnterBeforeFirstResizeWaitsForWelcome(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())

	h.typeText("early")
	assert.Nil(t, h.enter())
	assert.Equal(t, 0, h.store.Len())
	assert.Equal(t, turn.Idle, h.coord.State())
	assert.Equal(t, "early", h.m.InputValue())

	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	require.Equal(t, 1, h.store.Len())

	h.enter()
	h.pumpUntil(h.idleWith(3))
	msgs := h.store.Messages()
	assert.Equal(t, "welcome to ChatBotAI", msgs[0].Text)
	assert.Equal(t, "early", msgs[1].Text)
}

func TestModel_NoWelcome(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 0, h.store.Len())
	assert.Contains(t, h.m.View(), "0 messages")
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestModel_EnterSubmitsAndReplyFollows(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.typeText("hello")
	cmd := h.enter()
	assert.NotNil(t, cmd, "accepted submissions start the spinner")
	assert.Empty(t, h.m.InputValue())

	h.pumpUntil(h.idleWith(3))
	msgs := h.store.Messages()
	assert.Equal(t, transcript.User, msgs[1].Sender)
	assert.Equal(t, "hello", msgs[1].Text)
	assert.Equal(t, transcript.Bot, msgs[2].Sender)
	assert.Equal(t, "You said: hello", msgs[2].Text)
	assert.Contains(t, h.m.View(), "You said: hello")
	assert.Contains(t, h.m.View(), "3 messages · Bot: You said: hello")
}

func TestModel_BlankEnterIsIgnored(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.typeText("   ")
	assert.Nil(t, h.enter())
	assert.Equal(t, 0, h.store.Len())
	assert.Empty(t, h.m.Notice())
	assert.Equal(t, turn.Idle, h.coord.State())
}

func TestModel_BusyRejectsAndKeepsText(t *testing.T) {
	release := make(chan struct{})
	slow := responder.Func(func(ctx context.Context, text string) (string, error) {
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	h := newHarness(t, slow, nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.typeText("first")
	h.enter()
	h.pumpUntil(func() bool { return h.coord.State() == turn.AwaitingResponder })

	h.typeText("second")
	h.enter()
	assert.Equal(t, turn.ErrBusy.Error(), h.m.Notice())
	assert.Equal(t, "second", h.m.InputValue(), "rejected text stays in the box")
	assert.Equal(t, 1, h.store.Len())
	assert.Contains(t, h.m.View(), "input disabled")

	close(release)
	h.pumpUntil(h.idleWith(2))
	assert.Empty(t, h.m.Notice(), "notice clears once the turn is over")

	h.enter()
	h.pumpUntil(h.idleWith(4))
	assert.Equal(t, "second", h.store.Messages()[2].Text)
}

func TestModel_NewlineDoesNotSubmit(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.typeText("a")
	h.update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	h.typeText("b")
	h.update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	h.typeText("c")

	assert.Equal(t, "a\nb\nc", h.m.InputValue())
	assert.Equal(t, 0, h.store.Len())

	h.enter()
	h.pumpUntil(h.idleWith(2))
	assert.Equal(t, "a\nb\nc", h.store.Messages()[0].Text)
}

// =============================================================================
// QUITTING
// =============================================================================

func TestModel_TerminationTokenQuits(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.typeText("quit")
	cmd := h.enter()
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, turn.Closing, h.coord.State())
	assert.Equal(t, 1, h.store.Len(), "the token is never appended")
}

func TestModel_CtrlCQuits(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	cmd := h.update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, turn.Closing, h.coord.State())
}

func TestModel_SettingsSwapTokenAndTheme(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), nil)
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})

	h.update(SettingsMsg{TerminationToken: "bye", Theme: styles.ModeDark})
	assert.True(t, h.m.Theme().IsDark)

	h.typeText("quit")
	h.enter()
	h.pumpUntil(h.idleWith(2))
	assert.Equal(t, "quit", h.store.Messages()[0].Text, "old token is plain text now")

	h.typeText("bye")
	cmd := h.enter()
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

// =============================================================================
// SCROLLING
// =============================================================================

func TestModel_MouseWheelScrollsTranscript(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())
	// Three canvas rows, shorter than the welcome bubble and its avatar.
	h.update(tea.WindowSizeMsg{Width: 100, Height: 10})
	require.True(t, h.canvas.Pinned())

	h.update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.False(t, h.canvas.Pinned())

	h.update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.True(t, h.canvas.Pinned())
}

func TestModel_NewBubbleRepinsView(t *testing.T) {
	h := newHarness(t, responder.NewEcho(), welcome())
	h.update(tea.WindowSizeMsg{Width: 100, Height: 10})

	h.update(tea.KeyMsg{Type: tea.KeyPgUp})
	require.False(t, h.canvas.Pinned())

	h.typeText("hi")
	h.enter()
	h.pumpUntil(h.idleWith(3))
	assert.True(t, h.canvas.Pinned())
}
