// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/model"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// HTMLRenderer produces the markup of a message block:
//
//	<div class="message assistant">
//	  <div class="sender">🤖</div>
//	  <div class="message-content message--error">
//	    <div>...</div>
//	    <div class="timestamp">03:04 PM</div>
//	  </div>
//	</div>
//
// HTMLRenderer is safe for concurrent use.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	locale language.Tag
}

// NewHTMLRenderer creates an HTML renderer. Markdown is GitHub-flavored and
// single newlines become <br>.
func NewHTMLRenderer(locale language.Tag) *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
		locale: locale,
	}
}

// Markdown converts markdown to sanitized HTML.
func (h *HTMLRenderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(Sanitize(src)), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return h.policy.Sanitize(buf.String()), nil
}

// PlainText escapes text and turns newlines into <br>.
func PlainText(text string) string {
	return strings.ReplaceAll(html.EscapeString(Sanitize(text)), "\n", "<br>")
}

// Render produces the HTML block for msg.
func (h *HTMLRenderer) Render(msg model.Message) string {
	vm := NewViewModel(msg, h.locale)

	content := PlainText(vm.Body)
	if vm.Markdown {
		if out, err := h.Markdown(vm.Body); err == nil {
			content = strings.TrimSpace(out)
		}
	}

	contentClass := "message-content"
	if vm.Error {
		contentClass += " message--error"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"message %s\">\n", html.EscapeString(vm.RoleClass))
	fmt.Fprintf(&b, "  <div class=\"sender\">%s</div>\n", vm.Avatar)
	fmt.Fprintf(&b, "  <div class=\"%s\">\n", contentClass)
	fmt.Fprintf(&b, "    <div>%s</div>\n", content)
	fmt.Fprintf(&b, "    <div class=\"timestamp\">%s</div>\n", html.EscapeString(vm.Time))
	b.WriteString("  </div>\n</div>")
	return b.String()
}
