// chatbubbles - Terminal chat with message bubbles.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"os"

	"github.com/jeranaias/chatbubbles/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "none"
	BuildDate = "unknown"
)

func main() {
	cli.SetVersionInfo(Version, GitCommit, BuildDate)
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
