// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the chatbubbles packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: truncation to a terminal cell width
//   - StringWidth: display width of a string
//
// File Operations:
//   - ReplaceFile: crash-safe replacement of a private config file
//
// # Usage
//
//	// Fit a status line into the terminal
//	line := util.TruncateWidth(status, width)
//
//	// Save a config without ever leaving it half written
//	err := util.ReplaceFile(path, data)
package util
