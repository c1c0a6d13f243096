// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the docchat command line.
//
// Commands:
//
//	docchat              Start the full-screen chat (same as "docchat tui")
//	docchat chat         Line-based chat REPL with history
//	docchat ask "..."    Ask one question and print the answer
//	docchat serve        Run the docs chat API
//	docchat index build  Rebuild the docs index from a text file
//	docchat config       Show, get and set configuration values
//
// Global flags --config, --base-url and --log-level apply to every command.
package cli
