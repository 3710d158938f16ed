// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatbubbles TUI.

# Color System (colors.go)

Every color is a lipgloss.AdaptiveColor pair. Unlike lipgloss' own adaptive
rendering, a Theme resolves each pair itself so that ui.theme = "dark" or
"light" in the config wins over terminal detection.

	BotBubbleBg   - bubble behind replies and the welcome message
	UserBubbleBg  - bubble behind submitted text
	ErrorBubbleBg - bubble behind responder failures
	BubbleText    - text inside every bubble

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	decor := theme.Decor()          // colors for the layout engine
	header := theme.Header.Render("SAMchatbot")

# Spinner (spinner.go)

TypingSpinner is shown in the status bar while a reply is pending.
*/
package styles
