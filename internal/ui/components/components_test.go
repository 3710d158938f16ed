// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/chatbubbles/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeLight)
}

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestHeader_TitleAndBadge(t *testing.T) {
	h := NewHeader(testTheme(), "SAMchatbot")
	h.Badge = "ollama llama3.2"
	h.Width = 60

	view := h.View()
	assert.Contains(t, view, "SAMchatbot")
	assert.Contains(t, view, "[ollama llama3.2]")
}

func TestHeader_NarrowDropsBadge(t *testing.T) {
	h := NewHeader(testTheme(), "SAMchatbot")
	h.Badge = "ollama llama3.2"
	h.Width = 20

	view := h.View()
	assert.Contains(t, view, "SAMchatbot")
	assert.NotContains(t, view, "ollama")
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusReplying, "Replying"},
		{StatusNotice, "Notice"},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.status.String())
	}
}

func TestStatusBar_Left(t *testing.T) {
	tests := []struct {
		name string
		bar  StatusBar
		want string
	}{
		{"ready plural", StatusBar{Status: StatusReady, Messages: 3}, "3 messages"},
		{"ready singular", StatusBar{Status: StatusReady, Messages: 1}, "1 message"},
		{"ready with preview", StatusBar{Status: StatusReady, Messages: 2, Last: "Bot: You said: hi"}, "2 messages · Bot: You said: hi"},
		{"replying", StatusBar{Status: StatusReplying, Spinner: "..."}, "... replying"},
		{"notice", StatusBar{Status: StatusNotice, Message: "input disabled"}, "input disabled"},
		{"error", StatusBar{Status: StatusError, Message: "render failed"}, "render failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.bar.theme = testTheme()
			tc.bar.Width = 80
			assert.Contains(t, tc.bar.View(), tc.want)
		})
	}
}

func TestStatusBar_HintsHiddenWhenNarrow(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Hints = []string{"enter send", `"quit" ends`}

	sb.Width = 100
	assert.Contains(t, sb.View(), `"quit" ends`)

	sb.Width = narrowWidth - 1
	assert.NotContains(t, sb.View(), "enter send")
}

func TestStatusBar_FitsWidth(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Status = StatusError
	sb.Message = strings.Repeat("x", 200)
	sb.Width = 50

	for _, line := range strings.Split(sb.View(), "\n") {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(line), 50)
	}
}
