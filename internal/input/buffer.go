// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import "strings"

// Buffer is an append-only Editor used by line mode, where each line read
// from the terminal is inserted and a trailing backslash continues the entry.
type Buffer struct {
	b strings.Builder
}

// Value returns the buffered text.
func (b *Buffer) Value() string { return b.b.String() }

// Reset clears the buffer.
func (b *Buffer) Reset() { b.b.Reset() }

// InsertString appends s.
func (b *Buffer) InsertString(s string) { b.b.WriteString(s) }

// Len returns the buffered length in bytes.
func (b *Buffer) Len() int { return b.b.Len() }

// AddLine inserts one line from a line editor. A trailing backslash is
// replaced by a newline and reports that more input follows.
func (b *Buffer) AddLine(line string) (more bool) {
	if strings.HasSuffix(line, `\`) {
		b.InsertString(strings.TrimSuffix(line, `\`))
		InsertNewline(b)
		return true
	}
	b.InsertString(line)
	return false
}
