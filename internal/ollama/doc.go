// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is a small HTTP client for a local Ollama server.
//
// Only the non-streaming endpoints the chat responder needs are covered:
// a health check, model listing and /api/chat. Replies are rendered as whole
// bubbles, so there is no streaming support.
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})
//	if err := client.CheckRunning(ctx); err != nil {
//	    return err
//	}
//	resp, err := client.Chat(ctx, "llama3.2", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	})
package ollama
