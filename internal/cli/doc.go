// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatbubbles command line.
//
// The root command opens the full-screen chat window. Subcommands:
//
//	chatbubbles plain              line-mode chat, no alternate screen
//	chatbubbles config init        write a default config file
//	chatbubbles config path        print the config file location
//	chatbubbles config show        print the effective configuration
//	chatbubbles config get <key>   print one setting
//	chatbubbles config set <k> <v> change one setting in the file
//	chatbubbles models             list models on the Ollama server
//	chatbubbles version            print version information
//
// Global flags such as --responder, --theme and --token override the config
// file and CHATBUBBLES_* environment variables for one run.
//
// # Exit Codes
//
// Execute maps errors to exit codes: 2 for usage errors, 3 for configuration
// errors, 5 when Ollama is unreachable, 8 for timeouts and 1 otherwise.
package cli
