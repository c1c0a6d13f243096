// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/render"
)

// transcript is the message list: one rendered block per message inside a
// viewport. It implements render.Display.
type transcript struct {
	blocks   []string
	viewport viewport.Model
	renderer *render.Renderer
}

var _ render.Display = (*transcript)(nil)

func newTranscript(renderer *render.Renderer, width, height int) *transcript {
	vp := viewport.New(width, height)
	return &transcript{
		viewport: vp,
		renderer: renderer,
	}
}

// Append adds one block after the existing ones.
func (t *transcript) Append(block string) {
	t.blocks = append(t.blocks, block)
	t.refresh()
}

// Rendered follows the conversation to its newest message.
func (t *transcript) Rendered() {
	t.viewport.GotoBottom()
}

// add renders msg and appends it.
func (t *transcript) add(msg model.Message) {
	render.RenderTo(t, t.renderer, msg)
}

// reset drops every block.
func (t *transcript) reset() {
	t.blocks = t.blocks[:0]
	t.refresh()
}

// resize re-renders all messages for a new viewport size.
func (t *transcript) resize(width, height int, msgs []model.Message) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.renderer.SetWidth(width)

	t.blocks = t.blocks[:0]
	for _, msg := range msgs {
		t.blocks = append(t.blocks, t.renderer.Render(msg))
	}
	t.refresh()
	t.viewport.GotoBottom()
}

// Len returns the number of blocks.
func (t *transcript) Len() int {
	return len(t.blocks)
}

func (t *transcript) refresh() {
	t.viewport.SetContent(strings.Join(t.blocks, "\n\n"))
}
