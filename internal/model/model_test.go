// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendKeepsInsertionOrder(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("first"))
	conv.Append(NewAssistantMessage("second"))
	conv.Append(NewUserMessage("third"))

	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("original"))

	msgs := conv.Messages()
	msgs[0].Content = "mutated"

	again := conv.Messages()
	assert.Equal(t, "original", again[0].Content)
}

func TestConversation_ResetSeedsSingleGreeting(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < 5; i++ {
		conv.Append(NewUserMessage("q"))
	}

	seeded := conv.Reset("Chat cleared! What can I help you with?")

	require.Equal(t, 1, conv.Len())
	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, seeded.ID, last.ID)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.False(t, last.Error)
}

func TestConversation_LastAnswerSkipsErrors(t *testing.T) {
	conv := NewConversation()
	_, ok := conv.LastAnswer()
	assert.False(t, ok)

	conv.Append(NewAssistantMessage("good answer"))
	conv.Append(NewUserMessage("again"))
	conv.Append(NewErrorMessage("boom"))

	answer, ok := conv.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "good answer", answer.Content)
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage_IDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewUserMessage("x").ID
		require.True(t, strings.HasPrefix(id, "msg_"))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("failed")
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.True(t, msg.Error)
}

// =============================================================================
// FORMATTER TESTS
// =============================================================================

func TestAvatar(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "👤"},
		{RoleAssistant, "🤖"},
		{Role("bot"), "💬"},
		{Role(""), "💬"},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.want, Avatar(tc.role))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 4, 0, 0, time.Local)

	tests := []struct {
		locale string
		want   string
	}{
		{"en_US.UTF-8", "03:04 PM"},
		{"en-AU", "03:04 PM"},
		{"de_DE.UTF-8", "15:04"},
		{"fr-FR", "15:04"},
		{"en_GB", "15:04"},
	}

	for _, tc := range tests {
		t.Run(tc.locale, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatTimestamp(ts, Locale(tc.locale)))
		})
	}
}

func TestFormatTimestamp_MorningIsZeroPadded(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 5, 0, 0, time.Local)
	assert.Equal(t, "09:05 AM", FormatTimestamp(ts, language.AmericanEnglish))
	assert.Equal(t, "09:05", FormatTimestamp(ts, language.German))
}

func TestLocale_FallsBackFromPOSIX(t *testing.T) {
	t.Setenv("LC_ALL", "C")
	t.Setenv("LC_TIME", "")
	t.Setenv("LANG", "POSIX")

	assert.Equal(t, language.AmericanEnglish, Locale(""))
}

func TestLocale_ExplicitWinsOverEnvironment(t *testing.T) {
	t.Setenv("LANG", "en_US.UTF-8")

	tag := Locale("de_DE")
	assert.False(t, Uses12HourClock(tag))
}
