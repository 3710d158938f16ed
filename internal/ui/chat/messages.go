// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// UI THREAD MESSAGES
// =============================================================================

// uiTaskMsg carries coordinator work into Update.
type uiTaskMsg struct {
	fn func()
}

// =============================================================================
// SETTINGS MESSAGES
// =============================================================================

// SettingsMsg applies settings that can change while the window is open,
// typically after the config file was edited. Empty fields are left alone.
type SettingsMsg struct {
	Theme            string
	TerminationToken string
}
