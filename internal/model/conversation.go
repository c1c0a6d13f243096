// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered sequence of messages exchanged during one run.
//
// It is append-only until cleared and is never reordered. A Conversation has a
// single writer (the chat controller) and performs no locking.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages []Message
}

// NewConversation creates a new, empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		messages:  make([]Message, 0, 16),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
	c.UpdatedAt = time.Now()
}

// Clear discards every message.
func (c *Conversation) Clear() {
	c.messages = make([]Message, 0, 16)
	c.UpdatedAt = time.Now()
}

// Reset clears the conversation and seeds it with a single assistant greeting.
// The seeded message is returned so callers can render it.
func (c *Conversation) Reset(greeting string) Message {
	c.Clear()
	msg := NewAssistantMessage(greeting)
	c.Append(msg)
	return msg
}

// Messages returns a copy of the messages in insertion order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastAnswer returns the most recent non-error assistant message.
func (c *Conversation) LastAnswer() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		msg := c.messages[i]
		if msg.Role == RoleAssistant && !msg.Error {
			return msg, true
		}
	}
	return Message{}, false
}
