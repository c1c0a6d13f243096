// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation()
	conv.Append(model.NewAssistantMessage("Hello! How can I help?"))
	conv.Append(model.NewUserMessage("How do I use the *HTTP* node?"))
	conv.Append(model.NewAssistantMessage("Use **HTTP Request**.\n<script>alert(1)</script>"))
	conv.Append(model.NewErrorMessage("Sorry, I encountered an error: rate limited"))
	return conv
}

func testOptions(t *testing.T) *Options {
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.Locale = language.AmericanEnglish
	return opts
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"html", ".html"},
		{"", ".html"},
		{"md", ".md"},
		{"Markdown", ".md"},
		{"json", ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := ForFormat(tt.format, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, exp.FileExtension())
		})
	}

	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestExportRejectsEmptyConversation(t *testing.T) {
	for _, exp := range []Exporter{
		NewHTMLExporter(nil),
		NewMarkdownExporter(nil),
		NewJSONExporter(nil),
	} {
		_, err := exp.Export(model.NewConversation())
		assert.ErrorIs(t, err, ErrEmptyConversation)

		_, err = exp.Export(nil)
		assert.Error(t, err)
	}
}

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(testOptions(t)).Export(sampleConversation())
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<div class="message user">`)
	assert.Contains(t, page, `<div class="message assistant">`)
	assert.Contains(t, page, `message--error`)
	assert.Contains(t, page, "<strong>HTTP Request</strong>")
	assert.Contains(t, page, `class="timestamp"`)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "<strong>Messages:</strong> 4")
}

func TestHTMLExportWithoutTimestamps(t *testing.T) {
	opts := testOptions(t)
	opts.IncludeTimestamps = false

	out, err := NewHTMLExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	assert.NotContains(t, string(out), `<div class="timestamp">`)
}

func TestMarkdownExport(t *testing.T) {
	opts := testOptions(t)
	opts.Title = "Test\nInjection: malicious"

	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, `title: "Test\nInjection: malicious"`)
	assert.Contains(t, doc, "# Test Injection: malicious\n")
	for _, line := range strings.Split(doc, "\n") {
		assert.False(t, strings.HasPrefix(line, "Injection:"), "frontmatter injection")
	}
	assert.Contains(t, doc, "### 👤 You")
	assert.Contains(t, doc, "### 🤖 Assistant")
	assert.Contains(t, doc, `How do I use the \*HTTP\* node?`)
	assert.Contains(t, doc, "Use **HTTP Request**.")
	assert.Contains(t, doc, "> **Error:** Sorry, I encountered an error: rate limited")
	assert.Contains(t, doc, "messages: 4")
}

func TestJSONExport(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter(testOptions(t)).Export(conv)
	require.NoError(t, err)

	var doc transcript
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, conv.ID, doc.ID)
	require.Len(t, doc.Messages, 4)
	assert.Equal(t, model.RoleUser, doc.Messages[1].Role)
	assert.True(t, doc.Messages[3].Error)
}

func TestExportToFile(t *testing.T) {
	opts := testOptions(t)
	opts.OutputDir = filepath.Join(opts.OutputDir, "nested", "exports")

	path, err := ExportToFile(sampleConversation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, opts.OutputDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Docs_chat_transcript_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "generator: docchat")
}

func TestExportToFileEmpty(t *testing.T) {
	opts := testOptions(t)
	_, err := ExportToFile(model.NewConversation(), NewJSONExporter(opts), opts)
	assert.ErrorIs(t, err, ErrEmptyConversation)

	entries, err := os.ReadDir(opts.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes", "notes"},
		{"a/b:c", "a-b-c"},
		{"two words", "two_words"},
		{"", "transcript"},
		{"bell\a", "bell-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
	assert.LessOrEqual(t, len([]rune(sanitizeFilename(strings.Repeat("x", 200)))), 50)
}
