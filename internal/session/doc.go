// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat controller: the conversation, the
// Idle/Submitting state machine and the fixed texts shown for clears,
// failures and connectivity changes.
//
// # Key Types
//
//   - Controller: owns the conversation; the only writer to it
//   - State: StateIdle or StateSubmitting
//   - Sender: anything that can answer a question (transport.Client)
//
// # Usage
//
// Frontends register an observer, seed the greeting and then drive the
// controller from their own loop:
//
//	ctrl := session.NewController()
//	ctrl.OnAppend(func(m model.Message) { render.RenderTo(display, renderer, m) })
//	ctrl.Greet(session.DefaultWelcome)
//
//	question, err := ctrl.Begin(input)   // user message appended, Submitting
//	answer, err := client.Send(ctx, question)
//	ctrl.Settle(answer.Answer, err)      // assistant message appended, Idle
//
// Submit runs the three steps synchronously for line-oriented frontends.
//
// The controller is not safe for concurrent use. All calls must come from the
// goroutine that owns the UI loop.
package session
