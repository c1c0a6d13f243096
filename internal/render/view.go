// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/model"
)

// ViewModel is the display-ready form of a Message.
type ViewModel struct {
	ID     string
	Avatar string
	Name   string
	Body   string // sanitized content
	Time   string
	Error  bool

	// RoleClass is the role as written in markup ("user", "assistant", ...).
	RoleClass string

	// Markdown is true when Body should be rendered as markdown.
	Markdown bool
}

// NewViewModel builds the view of msg with timestamps formatted for locale.
func NewViewModel(msg model.Message, locale language.Tag) ViewModel {
	name := msg.Role.DisplayName()
	if !msg.Role.IsKnown() {
		name = "Message"
	}
	return ViewModel{
		ID:        msg.ID,
		Avatar:    model.Avatar(msg.Role),
		Name:      name,
		Body:      Sanitize(msg.Content),
		Time:      model.FormatTimestamp(msg.Timestamp, locale),
		Error:     msg.Error,
		RoleClass: msg.Role.String(),
		Markdown:  msg.Role == model.RoleAssistant,
	}
}
