// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger opens the structured log file for a chatbubbles run.
//
// The terminal belongs to the UI, so logs always go to a file. Every record
// carries a run_id so that several runs appending to the same file can be
// told apart.
//
//	log, err := logger.Open(logger.Config{Level: "debug", File: path})
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//	log.Component("turn").Info("turn started", "turn", 1)
package logger
