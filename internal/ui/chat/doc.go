// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat screen.
//
// The screen is a Bubble Tea model around a session.Controller:
//
//   - viewport: the rendered message blocks, scrolled to the bottom after
//     every append
//   - textinput: the question field, blurred while an answer is pending
//   - spinner: the typing indicator
//   - status bar: connection state, backend address and key hints
//   - overlays: clear confirmation and key help
//
// Keys are resolved through KeyMap into an Action and dispatched through a
// handler table. The network call runs as a tea.Cmd; its outcome comes back
// as a message, and a panic inside it arrives as UnexpectedErrorMsg.
//
// Connectivity and config reload events are delivered from outside with
// Program.Send(ConnectivityMsg{...}) and Program.Send(ConfigReloadedMsg{...}).
package chat
