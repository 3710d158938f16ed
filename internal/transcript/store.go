// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"sync"
	"time"
)

// Store is the append-only message sequence for one chat.
//
// The turn coordinator only mutates a Store from the UI goroutine, so an ID
// read with NextID is the one the following Append assigns. Reads happen
// from other goroutines and are guarded.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	nextID   uint64
	now      func() time.Time
}

// NewStore creates an empty store whose first message gets ID 0.
func NewStore() *Store {
	return &Store{
		messages: make([]Message, 0, 32),
		now:      time.Now,
	}
}

// NextID returns the ID the next appended message will get. The coordinator
// lays a bubble out under this ID before committing it.
func (s *Store) NextID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Append records a new message and returns the immutable copy.
func (s *Store) Append(sender Sender, text string) Message {
	return s.append(Message{Sender: sender, Text: text})
}

// AppendFailure records a bot message that replaces a reply the responder
// failed to produce.
func (s *Store) AppendFailure(text string) Message {
	return s.append(Message{Sender: Bot, Text: text, Failed: true})
}

func (s *Store) append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	msg.CreatedAt = s.now()
	s.nextID++
	s.messages = append(s.messages, msg)
	return msg
}

// Last returns the most recent message, or false if the store is empty.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Messages returns a copy of every message in ID order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
