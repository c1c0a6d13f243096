// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat/internal/export"
	"github.com/jeranaias/docchat/internal/offline"
	"github.com/jeranaias/docchat/internal/render"
	"github.com/jeranaias/docchat/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript.viewport, cmd = m.transcript.viewport.Update(msg)
		return m, cmd

	case responseMsg:
		m.ctrl.Settle(msg.answer, msg.err)
		return m, m.input.Focus()

	case UnexpectedErrorMsg:
		m.ctrl.Recover(msg.Cause)
		return m, m.input.Focus()

	case ConnectivityMsg:
		m.handleConnectivity(msg.Status)
		return m, nil

	case ConfigReloadedMsg:
		return m, m.applyConfig(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("export failed")
			return m, m.setNotice("Export failed: " + msg.err.Error())
		}
		m.logger.Info().Str("path", msg.path).Msg("transcript exported")
		return m, m.setNotice("Exported to " + msg.path)

	case copyDoneMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("copy failed")
			return m, m.setNotice("Copy failed: " + msg.err.Error())
		}
		return m, m.setNotice("Answer copied to clipboard")

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != session.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.ctrl.ControlsEnabled() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true
	m.theme.SetSize(width, height)

	m.input.Width = width - 6
	if m.input.Width < 10 {
		m.input.Width = 10
	}
	m.help.Width = width
	m.transcript.resize(width, m.listHeight(), m.ctrl.Messages())
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirming {
		return m.handleConfirmKey(msg)
	}

	action := m.keys.Resolve(msg)
	if m.showHelp && action != ActionQuit {
		if action == ActionHelp || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return nil
	}

	if handler, ok := m.handlers[action]; ok {
		return handler(m)
	}

	// Typing is ignored while an answer is pending.
	if !m.ctrl.ControlsEnabled() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.keys.Resolve(msg) == ActionQuit:
		return tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.confirming = false
		m.ctrl.Clear(func() bool { return true })
	case key.Matches(msg, m.keys.Deny):
		m.confirming = false
		m.ctrl.Clear(func() bool { return false })
	}
	return nil
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

func defaultHandlers() map[Action]func(*Model) tea.Cmd {
	return map[Action]func(*Model) tea.Cmd{
		ActionSubmit: (*Model).submit,
		ActionClear: func(m *Model) tea.Cmd {
			m.confirming = true
			return nil
		},
		ActionCopy:   (*Model).copyLastAnswer,
		ActionExport: (*Model).exportTranscript,
		ActionScrollUp: func(m *Model) tea.Cmd {
			m.transcript.viewport.LineUp(1)
			return nil
		},
		ActionScrollDown: func(m *Model) tea.Cmd {
			m.transcript.viewport.LineDown(1)
			return nil
		},
		ActionPageUp: func(m *Model) tea.Cmd {
			m.transcript.viewport.ViewUp()
			return nil
		},
		ActionPageDown: func(m *Model) tea.Cmd {
			m.transcript.viewport.ViewDown()
			return nil
		},
		ActionTop: func(m *Model) tea.Cmd {
			m.transcript.viewport.GotoTop()
			return nil
		},
		ActionBottom: func(m *Model) tea.Cmd {
			m.transcript.viewport.GotoBottom()
			return nil
		},
		ActionHelp: func(m *Model) tea.Cmd {
			m.showHelp = !m.showHelp
			return nil
		},
		ActionQuit: func(m *Model) tea.Cmd {
			return tea.Quit
		},
	}
}

// submit starts an exchange with the current input.
func (m *Model) submit() tea.Cmd {
	if !m.ctrl.SendEnabled(m.input.Value()) {
		return nil
	}
	question, err := m.ctrl.Begin(m.input.Value())
	if err != nil {
		return nil
	}

	m.input.Reset()
	m.input.Blur()
	return tea.Batch(m.sendCmd(question), m.spinner.Tick)
}

// sendCmd performs the network exchange off the update loop.
func (m *Model) sendCmd(question string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		answer, err := session.Send(context.Background(), client, question)
		var pe *session.PanicError
		if errors.As(err, &pe) {
			return UnexpectedErrorMsg{Cause: pe.Value}
		}
		return responseMsg{answer: answer, err: err}
	}
}

func (m *Model) copyLastAnswer() tea.Cmd {
	answer, ok := m.ctrl.LastAnswer()
	if !ok {
		return m.setNotice("Nothing to copy yet")
	}
	text := render.Sanitize(answer.Content)
	copyText := m.copyText
	return func() tea.Msg {
		return copyDoneMsg{err: copyText(text)}
	}
}

func (m *Model) exportTranscript() tea.Cmd {
	opts := export.DefaultOptions()
	opts.OutputDir = m.cfg.ExportDir()
	opts.Locale = m.locale

	exporter, err := export.ForFormat(m.cfg.Export.Format, opts)
	if err != nil {
		return m.setNotice("Export failed: " + err.Error())
	}

	conv := m.ctrl.Conversation()
	return func() tea.Msg {
		path, err := export.ExportToFile(conv, exporter, opts)
		return exportDoneMsg{path: path, err: err}
	}
}

// =============================================================================
// EXTERNAL EVENTS
// =============================================================================

func (m *Model) handleConnectivity(status offline.Status) {
	prev := m.online
	m.online = status

	switch status {
	case offline.StatusOffline:
		if prev != offline.StatusOffline {
			m.ctrl.ConnectionLost()
		}
	case offline.StatusOnline:
		m.ctrl.ConnectionRestored()
	}
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Config == nil {
		return nil
	}
	m.cfg = msg.Config
	if m.client != nil && msg.Config.Client.BaseURL != m.client.BaseURL() {
		m.client.SetBaseURL(msg.Config.Client.BaseURL)
		m.logger.Info().Str("base_url", m.client.BaseURL()).Msg("backend address changed")
	}
	m.transcript.viewport.MouseWheelEnabled = msg.Config.UI.MouseWheel
	return m.setNotice("Configuration reloaded")
}

// setNotice shows text in the status bar until it expires or is replaced.
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// String describes the model state for debug logging.
func (m *Model) String() string {
	return fmt.Sprintf("chat{state=%s messages=%d online=%s}", m.ctrl.State(), m.ctrl.Len(), m.online)
}
