// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is the question-answering backend the chat frontends talk to.
//
// # Routes
//
//   - GET  /        liveness message
//   - GET  /health  uptime, indexed chunk count and LLM reachability
//   - POST /chat    {"question": "..."} -> {"answer": "..."}
//
// Errors use the {"detail": "..."} envelope the transport client decodes.
package server
