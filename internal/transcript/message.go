// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"
	"time"

	"github.com/jeranaias/chatbubbles/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender int

const (
	User Sender = iota
	Bot
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case User:
		return "You"
	case Bot:
		return "Bot"
	default:
		return "?"
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the transcript. Values are immutable once the
// store hands them out.
type Message struct {
	ID        uint64    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Failed marks a bot message that stands in for a reply the responder
	// could not produce.
	Failed bool `json:"failed,omitempty"`
}

// IsBot reports whether the message was produced by the responder side.
func (m Message) IsBot() bool {
	return m.Sender == Bot
}

// Preview returns the text on one line, cut to at most maxLen runes.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(strings.Join(strings.Fields(m.Text), " "), maxLen)
}
