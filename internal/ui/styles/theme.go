// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/surface"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styled components of the chat window.
type Theme struct {
	// Terminal capabilities
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputFocused  lipgloss.Style
	InputDisabled lipgloss.Style
	Placeholder   lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusBusy  lipgloss.Style
	StatusError lipgloss.Style
	Hint        lipgloss.Style
}

// NewTheme builds a theme for mode. "auto" (or anything unrecognized) asks
// the terminal whether its background is dark.
func NewTheme(mode string) *Theme {
	mode = strings.ToLower(strings.TrimSpace(mode))
	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}
	return newTheme(mode, isDark, termenv.ColorProfile())
}

func newTheme(mode string, isDark bool, profile termenv.Profile) *Theme {
	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// Pick resolves an adaptive pair for this theme.
func (t *Theme) Pick(c lipgloss.AdaptiveColor) lipgloss.Color {
	if t.IsDark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Pick(Cyan)).
		Background(t.Pick(SurfaceDim)).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Pick(Cyan))

	t.InputFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Pick(Purple))

	t.InputDisabled = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Pick(Overlay)).
		Foreground(t.Pick(TextMuted))

	t.Placeholder = lipgloss.NewStyle().
		Foreground(t.Pick(TextMuted))

	t.StatusBar = lipgloss.NewStyle().
		Foreground(t.Pick(TextPrimary)).
		Background(t.Pick(SurfaceDim)).
		Padding(0, 1)

	t.StatusBusy = lipgloss.NewStyle().
		Foreground(t.Pick(Amber))

	t.StatusError = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Pick(Rose))

	t.Hint = lipgloss.NewStyle().
		Foreground(t.Pick(TextMuted)).
		Italic(true)
}

// Decor returns bubble colors for the layout engine, keeping the default
// avatars.
func (t *Theme) Decor() layout.Decor {
	d := layout.DefaultDecor()
	d.BotBubble = surface.Color(t.Pick(BotBubbleBg))
	d.UserBubble = surface.Color(t.Pick(UserBubbleBg))
	d.ErrorBubble = surface.Color(t.Pick(ErrorBubbleBg))
	d.Text = surface.Color(t.Pick(BubbleText))
	return d
}
