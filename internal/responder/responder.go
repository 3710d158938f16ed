// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/chatbubbles/internal/ollama"
	"github.com/jeranaias/chatbubbles/internal/turn"
)

// Kinds accepted by New.
const (
	KindEcho   = "echo"
	KindOllama = "ollama"
)

// Func adapts a function to a responder.
type Func func(ctx context.Context, text string) (string, error)

// Respond calls f.
func (f Func) Respond(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Echo repeats the submission back.
type Echo struct {
	Prefix string
}

// NewEcho creates an echo responder with the default prefix.
func NewEcho() *Echo {
	return &Echo{Prefix: "You said: "}
}

// Respond returns the prefixed text unless ctx is already done.
func (e *Echo) Respond(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.Prefix + text, nil
}

// NormalizeKind folds case and surrounding space. An empty kind is echo.
func NormalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return KindEcho
	}
	return kind
}

// UnknownKindError is returned for an unrecognized responder kind.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown responder kind %q (want %q or %q)", e.Kind, KindEcho, KindOllama)
}

// New returns the responder named by kind. client is only used for
// KindOllama and may be nil otherwise.
func New(kind string, client *ollama.Client, cfg OllamaConfig) (turn.Responder, error) {
	switch NormalizeKind(kind) {
	case KindEcho:
		return NewEcho(), nil
	case KindOllama:
		if client == nil {
			client = ollama.NewClient()
		}
		return NewOllama(client, cfg), nil
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
}
