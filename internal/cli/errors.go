// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the chatbubbles CLI.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/chatbubbles/internal/config"
	"github.com/jeranaias/chatbubbles/internal/ollama"
	"github.com/jeranaias/chatbubbles/internal/responder"
	"github.com/jeranaias/chatbubbles/internal/turn"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the Ollama server could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config")
	Action  string // Action being performed (e.g., "init")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// ConfigError marks a failure to load or validate configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UsageError marks bad arguments or flags.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes a formatted error to w.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) && len(verrs) > 1 {
		for _, v := range verrs {
			fmt.Fprintf(w, "  - %s\n", v.Error())
		}
	}
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var configErr *ConfigError
	var verrs config.ValidateErrors
	var kindErr *responder.UnknownKindError
	if errors.As(err, &configErr) || errors.As(err, &verrs) || errors.As(err, &kindErr) {
		return ExitConfigError
	}

	if ollama.IsNotRunning(err) {
		return ExitNetworkError
	}
	if ollama.IsTimeout(err) || errors.Is(err, turn.ErrShutdownTimeout) {
		return ExitTimeoutError
	}

	return ExitGeneralError
}
