// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrBusy is returned when a submission arrives while a turn is in flight.
	ErrBusy = errors.New("input disabled: turn in progress")

	// ErrClosing is returned once the coordinator is shutting down.
	ErrClosing = errors.New("coordinator is closing")

	// ErrShutdownTimeout is returned by Wait when turn goroutines outlive the
	// join deadline. They are left running.
	ErrShutdownTimeout = errors.New("shutdown timed out waiting for turns")
)

// ResponderError wraps a failure of the responder callback, including panics.
type ResponderError struct {
	Turn  uint64
	Panic bool
	Err   error
}

func (e *ResponderError) Error() string {
	if e.Panic {
		return fmt.Sprintf("turn %d: responder panicked: %v", e.Turn, e.Err)
	}
	return fmt.Sprintf("turn %d: responder failed: %v", e.Turn, e.Err)
}

func (e *ResponderError) Unwrap() error {
	return e.Err
}

// FailureText is the bubble text shown in place of a failed reply.
func FailureText(err error) string {
	return "Sorry, something went wrong: " + err.Error()
}
