// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/offline"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/transport"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeClient struct {
	mu        sync.Mutex
	base      string
	answer    string
	err       error
	panicWith any
	questions []string
}

func (f *fakeClient) Send(_ context.Context, question string) (*transport.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Answer{Answer: f.answer}, nil
}

func (f *fakeClient) BaseURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.base
}

func (f *fakeClient) SetBaseURL(baseURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.base = baseURL
}

func quietConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.UI.ShowWelcome = false
	cfg.UI.Theme = "notty"
	cfg.Export.Dir = t.TempDir()
	return cfg
}

func newTestModel(t *testing.T, client *fakeClient, opts ...Option) *Model {
	t.Helper()
	opts = append([]Option{WithConfig(quietConfig(t))}, opts...)
	m := New(client, opts...)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// collect runs cmd once and flattens batches. Follow-up commands of the
// returned messages are not run.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver feeds every message produced by cmd back into m.
func deliver(m *Model, cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		m.Update(msg)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// =============================================================================
// WELCOME
// =============================================================================

func TestNew_GreetsWithWelcome(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Theme = "notty"
	m := New(&fakeClient{}, WithConfig(cfg))

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
	assert.Equal(t, session.DefaultWelcome, msgs[0].Content)
}

func TestNew_CustomWelcome(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Theme = "notty"
	cfg.UI.Welcome = "Ask away."
	m := New(&fakeClient{}, WithConfig(cfg))

	require.Len(t, m.Messages(), 1)
	assert.Equal(t, "Ask away.", m.Messages()[0].Content)
}

func TestNew_NoWelcome(t *testing.T) {
	m := newTestModel(t, &fakeClient{})
	assert.Empty(t, m.Messages())
	assert.Equal(t, 0, m.transcript.Len())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_AnswerIsAppended(t *testing.T) {
	client := &fakeClient{answer: "Use the **HTTP Request** node."}
	m := newTestModel(t, client)

	m.SetInput("  How do I call an API?  ")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, session.StateSubmitting, m.Controller().State())
	assert.Empty(t, m.Input())
	require.Len(t, m.Messages(), 1)
	assert.Equal(t, model.RoleUser, m.Messages()[0].Role)
	assert.Equal(t, "How do I call an API?", m.Messages()[0].Content)

	deliver(m, cmd)

	assert.Equal(t, session.StateIdle, m.Controller().State())
	assert.Equal(t, []string{"How do I call an API?"}, client.questions)
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Use the **HTTP Request** node.", msgs[1].Content)
	assert.False(t, msgs[1].Error)
	assert.Equal(t, 2, m.transcript.Len())
}

func TestSubmit_BlankInputIsIgnored(t *testing.T) {
	client := &fakeClient{answer: "unused"}
	m := newTestModel(t, client)

	m.SetInput("   ")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, m.Messages())
	assert.Equal(t, session.StateIdle, m.Controller().State())
	assert.Empty(t, client.questions)
}

func TestSubmit_FailureBecomesErrorMessage(t *testing.T) {
	client := &fakeClient{err: &transport.HTTPError{StatusCode: 500, StatusText: "Internal Server Error", Detail: "index missing"}}
	m := newTestModel(t, client)

	m.SetInput("What is a trigger?")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Error)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Sorry, I encountered an error: "))
	assert.Contains(t, msgs[1].Content, "index missing")
	assert.True(t, m.Controller().ControlsEnabled())
}

func TestSubmit_PanicIsRecovered(t *testing.T) {
	client := &fakeClient{panicWith: "nil map"}
	m := newTestModel(t, client)

	m.SetInput("crash please")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	var sawUnexpected bool
	for _, msg := range collect(cmd) {
		if _, ok := msg.(UnexpectedErrorMsg); ok {
			sawUnexpected = true
		}
		m.Update(msg)
	}

	assert.True(t, sawUnexpected)
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Error)
	assert.Equal(t, session.UnexpectedErrorText, msgs[1].Content)
	assert.Equal(t, session.StateIdle, m.Controller().State())
}

func TestSubmit_BusyDropsInput(t *testing.T) {
	client := &fakeClient{answer: "done"}
	m := newTestModel(t, client)

	m.SetInput("first")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.Controller().ControlsEnabled())

	press(m, runes("second"))
	assert.Empty(t, m.Input())

	assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Len(t, m.Messages(), 1)

	deliver(m, cmd)
	assert.Equal(t, []string{"first"}, client.questions)

	press(m, runes("ok"))
	assert.Equal(t, "ok", m.Input())
}

// =============================================================================
// CLEAR
// =============================================================================

func TestClear_Declined(t *testing.T) {
	m := newTestModel(t, &fakeClient{answer: "yes"})
	m.SetInput("hello")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Len(t, m.Messages(), 2)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.Confirming())
	assert.Contains(t, m.View(), session.ClearPrompt)

	press(m, runes("n"))
	assert.False(t, m.Confirming())
	assert.Len(t, m.Messages(), 2)
}

func TestClear_Confirmed(t *testing.T) {
	m := newTestModel(t, &fakeClient{answer: "yes"})
	m.SetInput("hello")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	press(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	press(m, runes("y"))

	assert.False(t, m.Confirming())
	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, session.ClearedGreeting, msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
	assert.Equal(t, 1, m.transcript.Len())
}

func TestClear_OverlaySwallowsTyping(t *testing.T) {
	m := newTestModel(t, &fakeClient{})
	press(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	press(m, runes("x"))

	assert.True(t, m.Confirming())
	assert.Empty(t, m.Input())
}

// =============================================================================
// CONNECTIVITY
// =============================================================================

func TestConnectivity_LostAndRestored(t *testing.T) {
	m := newTestModel(t, &fakeClient{})

	m.Update(ConnectivityMsg{Status: offline.StatusOnline})
	assert.Empty(t, m.Messages(), "no restored notice without a prior loss")

	m.Update(ConnectivityMsg{Status: offline.StatusOffline})
	m.Update(ConnectivityMsg{Status: offline.StatusOffline})
	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Error)
	assert.Equal(t, session.ConnectionLostText, msgs[0].Content)
	assert.Equal(t, offline.StatusOffline, m.Online())

	m.Update(ConnectivityMsg{Status: offline.StatusOnline})
	msgs = m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, session.ConnectionRestoredText, msgs[1].Content)
	assert.False(t, msgs[1].Error)
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReloaded_UpdatesBaseURL(t *testing.T) {
	client := &fakeClient{base: "http://localhost:5000"}
	m := newTestModel(t, client)

	cfg := quietConfig(t)
	cfg.Client.BaseURL = "http://docs.internal:8080"
	_, cmd := m.Update(ConfigReloadedMsg{Config: cfg})

	assert.NotNil(t, cmd)
	assert.Equal(t, "http://docs.internal:8080", client.BaseURL())
	assert.Equal(t, "Configuration reloaded", m.Notice())
}

func TestNotice_ExpiresOnlyForLatest(t *testing.T) {
	m := newTestModel(t, &fakeClient{})

	m.setNotice("first")
	stale := m.noticeSeq
	m.setNotice("second")

	m.Update(noticeExpiredMsg{seq: stale})
	assert.Equal(t, "second", m.Notice())

	m.Update(noticeExpiredMsg{seq: m.noticeSeq})
	assert.Empty(t, m.Notice())
}

// =============================================================================
// COPY AND EXPORT
// =============================================================================

func TestCopy_LastAnswer(t *testing.T) {
	var copied string
	client := &fakeClient{answer: "Open the \x1b[31mcredentials\x1b[0m tab."}
	m := newTestModel(t, client, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m.SetInput("Where are credentials?")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyCtrlY}))
	assert.Equal(t, "Open the credentials tab.", copied)
	assert.Equal(t, "Answer copied to clipboard", m.Notice())
}

func TestCopy_NothingToCopy(t *testing.T) {
	called := false
	m := newTestModel(t, &fakeClient{}, WithClipboard(func(string) error {
		called = true
		return nil
	}))

	press(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.False(t, called)
	assert.Equal(t, "Nothing to copy yet", m.Notice())
}

func TestCopy_ClipboardFailure(t *testing.T) {
	m := newTestModel(t, &fakeClient{answer: "text"}, WithClipboard(func(string) error {
		return errors.New("no display")
	}))
	m.SetInput("q")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyCtrlY}))
	assert.Equal(t, "Copy failed: no display", m.Notice())
}

func TestExport_WritesTranscript(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Export.Format = "md"
	m := New(&fakeClient{answer: "Use a Cron node."}, WithConfig(cfg))

	m.SetInput("How do I schedule a workflow?")
	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	done, ok := msgs[0].(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.True(t, strings.HasPrefix(done.path, cfg.Export.Dir))
	assert.True(t, strings.HasSuffix(done.path, ".md"))

	data, err := os.ReadFile(done.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "How do I schedule a workflow?")
	assert.Contains(t, string(data), "Use a Cron node.")

	m.Update(done)
	assert.Equal(t, "Exported to "+done.path, m.Notice())
}

func TestExport_EmptyConversationFails(t *testing.T) {
	m := newTestModel(t, &fakeClient{})

	deliver(m, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))
	assert.True(t, strings.HasPrefix(m.Notice(), "Export failed: "))
}

// =============================================================================
// KEYS AND VIEW
// =============================================================================

func TestResolve(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want Action
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, ActionSubmit},
		{tea.KeyMsg{Type: tea.KeyCtrlL}, ActionClear},
		{tea.KeyMsg{Type: tea.KeyCtrlY}, ActionCopy},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, ActionExport},
		{tea.KeyMsg{Type: tea.KeyUp}, ActionScrollUp},
		{tea.KeyMsg{Type: tea.KeyDown}, ActionScrollDown},
		{tea.KeyMsg{Type: tea.KeyPgUp}, ActionPageUp},
		{tea.KeyMsg{Type: tea.KeyCtrlU}, ActionPageUp},
		{tea.KeyMsg{Type: tea.KeyPgDown}, ActionPageDown},
		{tea.KeyMsg{Type: tea.KeyCtrlHome}, ActionTop},
		{tea.KeyMsg{Type: tea.KeyCtrlEnd}, ActionBottom},
		{tea.KeyMsg{Type: tea.KeyF1}, ActionHelp},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlQ}, ActionQuit},
		{runes("q"), ActionNone},
		{runes("y"), ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, keys.Resolve(tt.msg))
		})
	}
}

func TestHelp_Toggle(t *testing.T) {
	m := newTestModel(t, &fakeClient{})

	press(m, tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "clear chat")

	press(m, runes("a"))
	assert.Empty(t, m.Input(), "typing is swallowed while help is open")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeClient{})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_ShowsTypingIndicatorWhileSubmitting(t *testing.T) {
	m := newTestModel(t, &fakeClient{answer: "a"})
	assert.NotContains(t, m.View(), typingText)

	m.SetInput("q")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	assert.Contains(t, view, typingText)
	assert.Contains(t, view, waitingText)

	deliver(m, cmd)
	assert.NotContains(t, m.View(), typingText)
}
