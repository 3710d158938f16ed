// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatbubbles/internal/ui/components"
)

// View renders header, transcript, input box and status bar.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	m.header.Width = m.width
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.canvas.Render(),
		m.renderInput(),
		m.renderStatus(),
	)
}

func (m Model) renderInput() string {
	box := m.theme.InputFocused
	if m.coord.State().Busy() {
		box = m.theme.InputDisabled
	}
	return box.Render(m.input.View())
}

// lastPreviewRunes bounds the newest-message preview in the status bar.
const lastPreviewRunes = 40

// renderStatus shows, in priority order, a render error, a notice, the
// typing spinner or the message count with a preview of the newest message.
func (m Model) renderStatus() string {
	sb := m.statusBar
	sb.Width = m.width
	sb.Messages = m.coord.Transcript().Len()
	sb.Last = ""
	if last, ok := m.coord.Transcript().Last(); ok {
		sb.Last = last.Sender.DisplayName() + ": " + last.Preview(lastPreviewRunes)
	}
	sb.Hints = m.hints()
	sb.Message = ""
	sb.Spinner = ""

	switch {
	case m.status.err != "":
		sb.Status, sb.Message = components.StatusError, m.status.err
	case m.status.notice != "":
		sb.Status, sb.Message = components.StatusNotice, m.status.notice
	case m.coord.State().Busy():
		sb.Status, sb.Spinner = components.StatusReplying, m.spinner.View()
	default:
		sb.Status = components.StatusReady
	}
	return sb.View()
}

func (m Model) hints() []string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if token := m.gateway.TerminationToken(); token != "" {
		parts = append(parts, fmt.Sprintf("%q ends", token))
	}
	return parts
}
