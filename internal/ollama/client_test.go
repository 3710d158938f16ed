// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://example:1/"})
	cfg := c.Config()

	if cfg.BaseURL != "http://example:1" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.DefaultModel != DefaultModel {
		t.Errorf("DefaultModel = %q, want %q", cfg.DefaultModel, DefaultModel)
	}

	if NewClientWithConfig(nil).Config().BaseURL != DefaultBaseURL {
		t.Error("nil config should use defaults")
	}
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestChat_SendsNonStreamingRequest(t *testing.T) {
	var got ChatRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Model:   got.Model,
			Message: NewAssistantMessage("hi there"),
			Done:    true,
		})
	})

	resp, err := c.Chat(context.Background(), "", []Message{
		NewSystemMessage("be brief"),
		NewUserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if got.Stream {
		t.Error("request should not stream")
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want default %q", got.Model, DefaultModel)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if resp.Message.Content != "hi there" {
		t.Errorf("reply = %q", resp.Message.Content)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		wantMsg string
	}{
		{"not found", http.StatusNotFound, "", IsModelNotFound, ""},
		{"api error body", http.StatusInternalServerError, `{"error":"out of memory"}`, nil, "out of memory"},
		{"bare status", http.StatusBadGateway, "nope", nil, "request failed: 502 Bad Gateway"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.Chat(context.Background(), "m", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *ClientError
			if !errors.As(err, &ce) {
				t.Fatalf("error %T is not a *ClientError", err)
			}
			if tc.check != nil && !tc.check(err) {
				t.Errorf("check failed for %v", err)
			}
			if tc.wantMsg != "" && err.Error() != tc.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestChat_BadJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := c.Chat(context.Background(), "m", nil)
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeInvalidResponse {
		t.Fatalf("err = %v, want invalid response", err)
	}
}

func TestChat_CanceledContext(t *testing.T) {
	block := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Chat(ctx, "m", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestChat_DeadlineIsTimeout(t *testing.T) {
	block := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Chat(ctx, "m", nil)
	if !IsTimeout(err) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestCheckRunning(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	})
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning: %v", err)
	}

	down := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	if err := down.CheckRunning(context.Background()); !IsNotRunning(err) {
		t.Errorf("err = %v, want not running", err)
	}
}

func TestListModels(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest","size":2019393189}]}`))
	})

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].Name != "llama3.2:latest" {
		t.Fatalf("models = %+v", models)
	}
	if got := models[0].FormatSize(); got != "1.9 GB" {
		t.Errorf("FormatSize = %q", got)
	}
}

// =============================================================================
// TYPE TESTS
// =============================================================================

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			got := resp.TokensPerSecond()
			if got < tc.want*0.99 || got > tc.want*1.01 {
				t.Errorf("TokensPerSecond() = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tc := range tests {
		m := ModelInfo{Size: tc.size}
		if got := m.FormatSize(); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestClientError_Unwrap(t *testing.T) {
	cause := errors.New("dial refused")
	err := &ClientError{Type: ErrTypeConnection, Message: "failed", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ClientError should unwrap to its cause")
	}
	if err.Error() != "failed: dial refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}
