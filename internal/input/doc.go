// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package input validates operator text before it reaches the turn
// coordinator.
//
// Text is NFC-normalized and trailing line breaks are dropped. Blank input is
// ignored. The termination token, matched exactly, shuts the session down
// instead of starting a turn, even while a turn is in flight.
package input
