// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/ui/styles"
)

const (
	defaultWidth = 80
	minBodyWidth = 20

	// blockChrome is the border plus padding around a message body.
	blockChrome = 3
)

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

// Renderer draws messages as terminal blocks.
//
// A Renderer is not safe for concurrent use; the UI owns one and calls it from
// its update loop.
type Renderer struct {
	width  int
	locale language.Tag
	style  string
	md     *glamour.TermRenderer
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithWidth sets the total block width in cells.
func WithWidth(width int) RendererOption {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithLocale sets the locale used for timestamps.
func WithLocale(tag language.Tag) RendererOption {
	return func(r *Renderer) {
		r.locale = tag
	}
}

// WithStyle sets the glamour style ("dark", "light", "notty", ...).
func WithStyle(style string) RendererOption {
	return func(r *Renderer) {
		if style != "" {
			r.style = style
		}
	}
}

// NewRenderer creates a terminal renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		width:  defaultWidth,
		locale: language.AmericanEnglish,
		style:  styles.GlamourStyle(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.md = r.newMarkdown()
	return r
}

// Width returns the current block width.
func (r *Renderer) Width() int {
	return r.width
}

// SetWidth changes the block width. Markdown wrapping follows the new width.
func (r *Renderer) SetWidth(width int) {
	if width <= 0 || width == r.width {
		return
	}
	r.width = width
	r.md = r.newMarkdown()
}

func (r *Renderer) bodyWidth() int {
	w := r.width - blockChrome
	if w < minBodyWidth {
		w = minBodyWidth
	}
	return w
}

func (r *Renderer) newMarkdown() *glamour.TermRenderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(r.bodyWidth()),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		// Plain text is still readable; Render falls back to it.
		return nil
	}
	return md
}

// Render draws a single message block.
func (r *Renderer) Render(msg model.Message) string {
	vm := NewViewModel(msg, r.locale)
	return lipgloss.JoinVertical(lipgloss.Left, r.header(vm), r.body(vm))
}

// RenderAll draws every message, separated by blank lines.
func (r *Renderer) RenderAll(msgs []model.Message) string {
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, r.Render(msg))
	}
	return strings.Join(blocks, "\n\n")
}

// ==========================================================================
// BLOCK PARTS
// ==========================================================================

func (r *Renderer) header(vm ViewModel) string {
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(roleColor(vm))
	timeStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	parts := []string{vm.Avatar, nameStyle.Render(vm.Name)}
	if vm.Error {
		parts = append(parts, styles.RenderError("error"))
	}
	if vm.Time != "" {
		parts = append(parts, timeStyle.Render(vm.Time))
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) body(vm ViewModel) string {
	text := vm.Body
	if vm.Markdown {
		text = r.markdown(text)
	} else {
		text = lipgloss.NewStyle().Width(r.bodyWidth()).Render(text)
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(roleColor(vm)).
		PaddingLeft(1).
		Render(text)
}

// markdown renders text through glamour, falling back to wrapped plain text.
func (r *Renderer) markdown(text string) string {
	if r.md != nil {
		if out, err := r.md.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return lipgloss.NewStyle().Width(r.bodyWidth()).Render(text)
}

func roleColor(vm ViewModel) lipgloss.TerminalColor {
	if vm.Error {
		return styles.Rose
	}
	switch vm.RoleClass {
	case model.RoleUser.String():
		return styles.UserBubbleBorder
	case model.RoleAssistant.String():
		return styles.AssistantBubbleBorder
	default:
		return styles.Overlay
	}
}
