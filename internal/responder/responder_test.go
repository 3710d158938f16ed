// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbubbles/internal/ollama"
	"github.com/jeranaias/chatbubbles/internal/turn"
)

var (
	_ turn.Responder = Func(nil)
	_ turn.Responder = (*Echo)(nil)
	_ turn.Responder = (*Ollama)(nil)
)

// =============================================================================
// ECHO AND FUNC
// =============================================================================

func TestEcho_Respond(t *testing.T) {
	got, err := NewEcho().Respond(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "You said: hello", got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEcho().Respond(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc_Respond(t *testing.T) {
	f := Func(func(_ context.Context, text string) (string, error) {
		return text + "!", nil
	})
	got, err := f.Respond(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}

func TestNew_Kinds(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{"echo", false},
		{"ECHO", false},
		{"ollama", false},
		{"gpt", true},
	}
	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			r, err := New(tc.kind, nil, OllamaConfig{})
			if tc.wantErr {
				var uk *UnknownKindError
				require.True(t, errors.As(err, &uk))
				assert.Contains(t, uk.Error(), tc.kind)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := map[string]string{
		"":         KindEcho,
		"  ":       KindEcho,
		"Echo":     KindEcho,
		" OLLAMA ": KindOllama,
		"ollama":   KindOllama,
		"GPT":      "gpt",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeKind(in), "kind %q", in)
	}
}

// =============================================================================
// OLLAMA
// =============================================================================

type chatServer struct {
	mu       sync.Mutex
	requests []ollama.ChatRequest
	reply    string
}

func (s *chatServer) handler(w http.ResponseWriter, r *http.Request) {
	var req ollama.ChatRequest
	json.NewDecoder(r.Body).Decode(&req)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := s.reply
	s.mu.Unlock()
	json.NewEncoder(w).Encode(ollama.ChatResponse{Message: ollama.NewAssistantMessage(reply), Done: true})
}

func newOllama(t *testing.T, reply string, cfg OllamaConfig) (*Ollama, *chatServer) {
	t.Helper()
	cs := &chatServer{reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(cs.handler))
	t.Cleanup(srv.Close)
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL})
	return NewOllama(client, cfg), cs
}

func TestOllama_SendsSystemPromptAndHistory(t *testing.T) {
	o, cs := newOllama(t, "  sure  ", OllamaConfig{
		Model:        "tiny",
		SystemPrompt: "be brief",
		HistoryLimit: 2,
	})

	got, err := o.Respond(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "sure", got)

	_, err = o.Respond(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, cs.requests, 2)
	second := cs.requests[1]
	assert.Equal(t, "tiny", second.Model)
	require.Len(t, second.Messages, 4)
	assert.Equal(t, "system", second.Messages[0].Role)
	assert.Equal(t, "first", second.Messages[1].Content)
	assert.Equal(t, "sure", second.Messages[2].Content)
	assert.Equal(t, "second", second.Messages[3].Content)

	_, err = o.Respond(context.Background(), "third")
	require.NoError(t, err)
	third := cs.requests[2]
	require.Len(t, third.Messages, 4, "history is capped")
	assert.Equal(t, "second", third.Messages[1].Content)
}

func TestOllama_NoHistoryByDefault(t *testing.T) {
	o, cs := newOllama(t, "ok", OllamaConfig{})

	_, _ = o.Respond(context.Background(), "a")
	_, _ = o.Respond(context.Background(), "b")
	require.Len(t, cs.requests, 2)
	assert.Len(t, cs.requests[1].Messages, 1)
}

func TestOllama_EmptyReply(t *testing.T) {
	o, _ := newOllama(t, "   ", OllamaConfig{})
	_, err := o.Respond(context.Background(), "a")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOllama_RateLimitHonorsContext(t *testing.T) {
	o, cs := newOllama(t, "ok", OllamaConfig{RequestsPerMinute: 1})

	_, err := o.Respond(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = o.Respond(ctx, "b")
	assert.Error(t, err, "second request within the minute waits past the deadline")
	assert.Len(t, cs.requests, 1)
}

func TestOllama_TimeoutIsReported(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	o := NewOllama(ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL}), OllamaConfig{
		Timeout: 20 * time.Millisecond,
	})
	_, err := o.Respond(context.Background(), "a")
	assert.True(t, ollama.IsTimeout(err), "err = %v", err)
}
