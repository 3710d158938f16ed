// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/chatbubbles/internal/ollama"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("model returned an empty reply")

// OllamaConfig configures an Ollama responder.
type OllamaConfig struct {
	Model             string
	SystemPrompt      string
	Timeout           time.Duration
	RequestsPerMinute int
	// HistoryLimit caps the number of prior messages sent for context.
	// Zero sends only the current submission.
	HistoryLimit int
}

// Ollama answers submissions with a local model.
type Ollama struct {
	client  *ollama.Client
	cfg     OllamaConfig
	limiter *rate.Limiter

	mu      sync.Mutex
	history []ollama.Message
}

// NewOllama creates a responder using client.
func NewOllama(client *ollama.Client, cfg OllamaConfig) *Ollama {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = cfg.RequestsPerMinute
	}
	return &Ollama{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Respond sends text, with recent history, and returns the model's reply.
func (o *Ollama) Respond(ctx context.Context, text string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	user := ollama.NewUserMessage(text)
	resp, err := o.client.Chat(ctx, o.cfg.Model, o.messages(user))
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(resp.Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	o.remember(user, ollama.NewAssistantMessage(reply))
	return reply, nil
}

// messages builds the request: system prompt, history, then the submission.
func (o *Ollama) messages(user ollama.Message) []ollama.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	msgs := make([]ollama.Message, 0, len(o.history)+2)
	if o.cfg.SystemPrompt != "" {
		msgs = append(msgs, ollama.NewSystemMessage(o.cfg.SystemPrompt))
	}
	msgs = append(msgs, o.history...)
	return append(msgs, user)
}

func (o *Ollama) remember(msgs ...ollama.Message) {
	if o.cfg.HistoryLimit <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, msgs...)
	if over := len(o.history) - o.cfg.HistoryLimit; over > 0 {
		o.history = append([]ollama.Message(nil), o.history[over:]...)
	}
}
