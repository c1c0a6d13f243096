// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/model"
)

// =============================================================================
// SANITIZE TESTS
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"csi color", "\x1b[31mred\x1b[0m", "red"},
		{"osc title", "\x1b]0;pwned\x07ok", "ok"},
		{"bell and nul", "a\x07b\x00c", "abc"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"bidi override", "abc\u202edef", "abcdef"},
		{"unicode", "héllo 🤖", "héllo 🤖"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

// =============================================================================
// VIEW MODEL TESTS
// =============================================================================

func TestNewViewModel(t *testing.T) {
	user := NewViewModel(model.NewUserMessage("hi"), language.AmericanEnglish)
	assert.Equal(t, "👤", user.Avatar)
	assert.Equal(t, "user", user.RoleClass)
	assert.False(t, user.Markdown)
	assert.NotEmpty(t, user.Time)

	bot := NewViewModel(model.NewErrorMessage("\x1b[2Jboom"), language.AmericanEnglish)
	assert.Equal(t, "🤖", bot.Avatar)
	assert.True(t, bot.Markdown)
	assert.True(t, bot.Error)
	assert.Equal(t, "boom", bot.Body)

	other := NewViewModel(model.NewMessage(model.Role("bot"), "x"), language.AmericanEnglish)
	assert.Equal(t, "💬", other.Avatar)
	assert.False(t, other.Markdown)
	assert.Equal(t, "Message", other.Name)
}

// =============================================================================
// TERMINAL RENDERER TESTS
// =============================================================================

func newTestRenderer() *Renderer {
	return NewRenderer(WithWidth(60), WithStyle("notty"), WithLocale(language.AmericanEnglish))
}

func TestRenderer_UserMessageIsPlainText(t *testing.T) {
	out := newTestRenderer().Render(model.NewUserMessage("line one\nline two"))

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
}

func TestRenderer_AssistantMarkdown(t *testing.T) {
	out := newTestRenderer().Render(model.NewAssistantMessage("Steps:\n\n- open\n- save"))

	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "save")
}

func TestRenderer_StripsEscapes(t *testing.T) {
	out := newTestRenderer().Render(model.NewAssistantMessage("safe\x1b]0;pwned\x07 text"))

	assert.NotContains(t, out, "pwned")
	assert.Contains(t, out, "safe")
}

func TestRenderer_ErrorMarker(t *testing.T) {
	r := newTestRenderer()

	assert.Contains(t, r.Render(model.NewErrorMessage("Sorry, I encountered an error: x")), "[X]")
	assert.NotContains(t, r.Render(model.NewAssistantMessage("fine")), "[X]")
}

func TestRenderer_SetWidth(t *testing.T) {
	r := newTestRenderer()
	r.SetWidth(100)
	assert.Equal(t, 100, r.Width())

	r.SetWidth(0)
	assert.Equal(t, 100, r.Width())
}

func TestRenderer_RenderAll(t *testing.T) {
	msgs := []model.Message{model.NewUserMessage("first"), model.NewAssistantMessage("second")}
	out := newTestRenderer().RenderAll(msgs)

	require.Contains(t, out, "first")
	require.Contains(t, out, "second")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

// =============================================================================
// HTML RENDERER TESTS
// =============================================================================

func TestHTMLRenderer_AssistantMarkdown(t *testing.T) {
	h := NewHTMLRenderer(language.AmericanEnglish)
	out := h.Render(model.NewAssistantMessage("**bold**\nnext line"))

	assert.Contains(t, out, `<div class="message assistant">`)
	assert.Contains(t, out, `<div class="sender">🤖</div>`)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<br")
	assert.NotContains(t, out, "message--error")
}

func TestHTMLRenderer_StripsScripts(t *testing.T) {
	h := NewHTMLRenderer(language.AmericanEnglish)
	out := h.Render(model.NewAssistantMessage("hi <script>alert(1)</script> [x](javascript:alert(1))"))

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hi")
}

func TestHTMLRenderer_UserTextEscaped(t *testing.T) {
	h := NewHTMLRenderer(language.AmericanEnglish)
	out := h.Render(model.NewUserMessage("a<b>\nc"))

	assert.Contains(t, out, `<div class="message user">`)
	assert.Contains(t, out, "a&lt;b&gt;<br>c")
}

func TestHTMLRenderer_ErrorClass(t *testing.T) {
	h := NewHTMLRenderer(language.AmericanEnglish)
	out := h.Render(model.NewErrorMessage("failed"))

	assert.Contains(t, out, `class="message-content message--error"`)
}

func TestHTMLRenderer_UnknownRoleIsPlain(t *testing.T) {
	h := NewHTMLRenderer(language.AmericanEnglish)
	out := h.Render(model.NewMessage(model.Role("bot"), "**not bold**"))

	assert.Contains(t, out, "💬")
	assert.Contains(t, out, "**not bold**")
	assert.NotContains(t, out, "<strong>")
}

// =============================================================================
// DISPLAY TESTS
// =============================================================================

type recordingDisplay struct {
	events []string
}

func (d *recordingDisplay) Append(block string) { d.events = append(d.events, "append:"+block) }
func (d *recordingDisplay) Rendered()           { d.events = append(d.events, "rendered") }

type fixedRenderer string

func (f fixedRenderer) Render(model.Message) string { return string(f) }

func TestRenderTo_AppendsOnceThenSignals(t *testing.T) {
	d := &recordingDisplay{}
	RenderTo(d, fixedRenderer("block"), model.NewUserMessage("x"))

	assert.Equal(t, []string{"append:block", "rendered"}, d.events)
}
