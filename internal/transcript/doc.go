// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the ordered, append-only record of a chat.
//
// # Key Types
//
//   - Message: immutable record with a monotonic ID, sender, text and timestamp
//   - Sender: who produced the message (User or Bot)
//   - Store: the append-only sequence; the only owner of messages
//
// # Usage
//
//	store := transcript.NewStore()
//	hello := store.Append(transcript.User, "hello")
//	reply := store.Append(transcript.Bot, "hi there")
//	// hello.ID == 0, reply.ID == 1
//
// There is no deletion or mutation API. Messages are returned by value so
// callers can never change what the store holds.
package transcript
