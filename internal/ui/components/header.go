// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/chatbubbles/internal/ui/styles"
	"github.com/jeranaias/chatbubbles/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the one-line title bar.
type Header struct {
	Title string // Window title (default: "SAMchatbot")
	Badge string // Responder description, e.g. "ollama llama3.2"
	Width int    // Available width
	theme *styles.Theme
}

// NewHeader creates a header with the given title.
func NewHeader(theme *styles.Theme, title string) *Header {
	return &Header{
		Title: title,
		Width: 80,
		theme: theme,
	}
}

// SetTheme swaps the theme used for rendering.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// View renders the title on the left and the badge on the right. The badge
// is dropped first when space runs out.
func (h *Header) View() string {
	inner := h.Width - 2 // Header padding
	if inner < 1 {
		inner = 1
	}

	title := util.TruncateWidth(h.Title, inner)
	line := h.theme.HeaderTitle.Render(title)

	if h.Badge != "" {
		badge := "[" + h.Badge + "]"
		gap := inner - util.StringWidth(title) - util.StringWidth(badge)
		if gap >= 1 {
			line += strings.Repeat(" ", gap) + h.theme.Hint.Render(badge)
		}
	}
	return h.theme.Header.Width(h.Width).Render(line)
}
