// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/jeranaias/docchat/internal/model"

// Display is a surface that shows message blocks in order.
type Display interface {
	// Append adds one block after the existing ones.
	Append(block string)

	// Rendered is called once the appended block is in place. Displays that
	// follow the conversation scroll to the bottom here.
	Rendered()
}

// BlockRenderer turns a message into a block for a Display.
type BlockRenderer interface {
	Render(msg model.Message) string
}

// RenderTo appends exactly one block for msg to d and then signals completion.
func RenderTo(d Display, r BlockRenderer, msg model.Message) {
	d.Append(r.Render(msg))
	d.Rendered()
}
