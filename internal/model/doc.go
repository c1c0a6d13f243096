// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat conversation with the documentation assistant.
//
// # Key Types
//
//   - Conversation: Insertion-ordered sequence of messages for the current run
//   - Message: Immutable record with role, content, timestamp and error flag
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("How do I schedule a workflow?"))
//	for _, msg := range conv.Messages() {
//	    fmt.Println(model.Avatar(msg.Role), msg.Content)
//	}
package model
