// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/docchat/internal/offline"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/ui/styles"
	"github.com/jeranaias/docchat/internal/util"
)

const (
	appTitle    = "Docs Assistant"
	typingText  = "Assistant is typing"
	waitingText = "Waiting for the answer..."
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch {
	case m.confirming:
		body = m.renderConfirm()
	case m.showHelp:
		body = m.renderHelp()
	default:
		body = m.transcript.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderTyping(),
		m.renderInput(),
		m.renderStatus(),
	)
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(appTitle)
	subtitle := ""
	if m.client != nil && m.theme.GetLayoutMode() != styles.LayoutNarrow {
		room := m.width - 4 - util.StringWidth(appTitle)
		subtitle = m.theme.HeaderSubtitle.Render(" " + util.TruncateWidth(m.client.BaseURL(), room))
	}
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

func (m *Model) renderTyping() string {
	if m.ctrl.State() != session.StateSubmitting {
		return ""
	}
	return m.spinner.View() + " " + m.theme.ThinkingText.Render(typingText)
}

func (m *Model) renderInput() string {
	width := m.width - 2
	if width < 12 {
		width = 12
	}
	if !m.ctrl.ControlsEnabled() {
		return m.theme.InputDisabled.Width(width).Render(waitingText)
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m *Model) renderStatus() string {
	var status string
	switch m.online {
	case offline.StatusOnline:
		status = m.theme.StatusOnline.Render("● online")
	case offline.StatusOffline:
		status = m.theme.StatusOffline.Render("● offline")
	default:
		status = m.theme.StatusBusy.Render("○ connecting")
	}

	right := ""
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		right = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	if m.notice != "" {
		right = m.theme.Notice.Render(m.notice)
	}

	line := ansi.Truncate(status+"  "+right, m.width-2, "...")
	return m.theme.StatusBar.Width(m.width).Render(line)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) renderConfirm() string {
	hint := strings.Join([]string{
		m.theme.ShortcutKey.Render("y") + m.theme.ShortcutDesc.Render(" clear"),
		m.theme.ShortcutKey.Render("n") + m.theme.ShortcutDesc.Render(" keep"),
	}, "   ")

	box := m.theme.ConfirmBox.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.theme.ConfirmTitle.Render(session.ClearPrompt),
		"",
		m.theme.ConfirmHint.Render(hint),
	))
	return lipgloss.Place(m.width, m.listHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	box := m.theme.HelpBox.Render(h.View(m.keys))
	return lipgloss.Place(m.width, m.listHeight(), lipgloss.Center, lipgloss.Center, box)
}
