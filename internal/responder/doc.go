// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package responder provides the reply producers the turn coordinator calls.
//
//   - Echo answers "You said: <text>" and needs nothing else.
//   - Ollama asks a local Ollama server, rate limited and with a per-request
//     timeout.
//   - Func adapts a plain function.
package responder
