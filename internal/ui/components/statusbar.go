// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatbubbles/internal/ui/styles"
	"github.com/jeranaias/chatbubbles/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents what the left side of the status bar shows.
type Status int

const (
	StatusReady Status = iota
	StatusReplying
	StatusNotice
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusReplying:
		return "Replying"
	case StatusNotice:
		return "Notice"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// narrowWidth is the width below which key hints are hidden.
const narrowWidth = 60

// StatusBar is the bottom line of the chat window.
type StatusBar struct {
	Status   Status
	Message  string   // Notice or error text
	Spinner  string   // Current spinner frame while replying
	Messages int      // Transcript length shown when ready
	Last     string   // Preview of the newest message, shown when ready
	Hints    []string // Key hints, joined on the right
	Width    int      // Available width
	theme    *styles.Theme
}

// NewStatusBar creates a ready status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetTheme swaps the theme used for rendering.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// left returns the status text and its style.
func (s *StatusBar) left() (string, lipgloss.Style) {
	switch s.Status {
	case StatusError:
		return s.Message, s.theme.StatusError
	case StatusNotice:
		return s.Message, s.theme.StatusBusy
	case StatusReplying:
		return strings.TrimSpace(s.Spinner + " replying"), s.theme.StatusBusy
	default:
		count := fmt.Sprintf("%d messages", s.Messages)
		if s.Messages == 1 {
			count = "1 message"
		}
		if s.Last != "" {
			count += " · " + s.Last
		}
		return count, lipgloss.NewStyle()
	}
}

// View renders the status bar. Hints are dropped on narrow terminals or
// when they would collide with the status text.
func (s *StatusBar) View() string {
	inner := s.Width - 2 // StatusBar padding
	if inner < 1 {
		inner = 1
	}

	text, style := s.left()
	text = util.TruncateWidth(text, inner)

	hint := ""
	if s.Width >= narrowWidth {
		hint = strings.Join(s.Hints, " · ")
	}
	gap := inner - util.StringWidth(text) - util.StringWidth(hint)
	if gap < 1 {
		hint, gap = "", inner-util.StringWidth(text)
	}
	if gap < 0 {
		gap = 0
	}

	line := style.Render(text) + strings.Repeat(" ", gap) + s.theme.Hint.Render(hint)
	return s.theme.StatusBar.Width(s.Width).Render(line)
}
