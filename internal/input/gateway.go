// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyInput is the rejection reason for blank submissions.
var ErrEmptyInput = errors.New("empty input")

// DefaultTerminationToken ends the session when submitted.
const DefaultTerminationToken = "quit"

// Outcome is what the gateway did with a submission.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
	Terminated
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Result describes one submission.
type Result struct {
	Outcome Outcome
	// Text is the normalized text that was submitted.
	Text string
	// Reason is set when Outcome is Rejected.
	Reason error
}

// Submitter starts a turn. *turn.Coordinator satisfies it.
type Submitter interface {
	Submit(text string) error
}

// Editor is a pending input buffer. *textarea.Model and *Buffer satisfy it.
type Editor interface {
	Value() string
	Reset()
	InsertString(s string)
}

// Gateway filters submissions and forwards the valid ones.
type Gateway struct {
	sub         Submitter
	onTerminate func()
	log         *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewGateway creates a gateway. onTerminate is called, at most once per
// termination submission, instead of starting a turn.
func NewGateway(sub Submitter, token string, onTerminate func()) *Gateway {
	if onTerminate == nil {
		onTerminate = func() {}
	}
	return &Gateway{
		sub:         sub,
		onTerminate: onTerminate,
		log:         slog.New(slog.DiscardHandler),
		token:       token,
	}
}

// SetLogger replaces the gateway logger.
func (g *Gateway) SetLogger(l *slog.Logger) {
	if l != nil {
		g.log = l
	}
}

// SetTerminationToken changes the token. An empty token disables termination
// by input.
func (g *Gateway) SetTerminationToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// TerminationToken returns the current token.
func (g *Gateway) TerminationToken() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Normalize converts raw editor text to the form that is validated and
// submitted: NFC, with trailing CR and LF runs removed. Other trailing
// whitespace is kept, so "quit " is text and not the token.
func Normalize(raw string) string {
	return strings.TrimRight(norm.NFC.String(raw), "\r\n")
}

// Submit validates raw and forwards it.
func (g *Gateway) Submit(raw string) Result {
	text := Normalize(raw)

	if strings.TrimSpace(text) == "" {
		return Result{Outcome: Rejected, Text: text, Reason: ErrEmptyInput}
	}

	// The token is checked before the coordinator sees the text, so it ends
	// the session even while a reply is pending.
	if token := g.TerminationToken(); token != "" && text == Normalize(token) {
		g.log.Info("termination token received")
		g.onTerminate()
		return Result{Outcome: Terminated, Text: text}
	}

	if err := g.sub.Submit(text); err != nil {
		g.log.Debug("submission rejected", "error", err)
		return Result{Outcome: Rejected, Text: text, Reason: err}
	}
	return Result{Outcome: Accepted, Text: text}
}

// SubmitFrom submits the editor contents and clears the editor unless the
// submission was rejected.
func (g *Gateway) SubmitFrom(e Editor) Result {
	res := g.Submit(e.Value())
	if res.Outcome != Rejected {
		e.Reset()
	}
	return res
}

// InsertNewline adds a line break at the cursor without submitting.
func InsertNewline(e Editor) {
	e.InsertString("\n")
}
