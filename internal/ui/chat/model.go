// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/offline"
	"github.com/jeranaias/docchat/internal/render"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/ui/styles"
)

const (
	// headerHeight and footerHeight are the rows around the message list.
	headerHeight = 2
	footerHeight = 5

	// noticeTTL is how long a status notice stays visible.
	noticeTTL = 4 * time.Second

	inputPlaceholder = "Ask a question about the docs..."
	inputCharLimit   = 4000
)

// Client is the backend the chat talks to. *transport.Client satisfies it.
type Client interface {
	session.Sender
	BaseURL() string
	SetBaseURL(baseURL string)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	ctrl   *session.Controller
	client Client
	cfg    *config.Config

	// Rendering
	renderer   *render.Renderer
	transcript *transcript
	theme      *styles.Theme
	locale     language.Tag

	// Interaction
	keys     KeyMap
	handlers map[Action]func(*Model) tea.Cmd
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model

	// Overlays and status
	confirming bool
	showHelp   bool
	online     offline.Status
	notice     string
	noticeSeq  int

	// Layout
	width  int
	height int
	ready  bool

	copyText func(string) error
	logger   zerolog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithConfig sets the configuration. Without it config.Default() is used.
func WithConfig(cfg *config.Config) Option {
	return func(m *Model) {
		if cfg != nil {
			m.cfg = cfg
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}

// New creates the chat screen for client.
func New(client Client, opts ...Option) *Model {
	m := &Model{
		client:   client,
		cfg:      config.Default(),
		theme:    styles.NewTheme(),
		keys:     DefaultKeyMap(),
		online:   offline.StatusUnknown,
		copyText: clipboard.WriteAll,
		logger:   zerolog.Nop(),
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.locale = model.Locale(m.cfg.UI.Locale)

	rendererOpts := []render.RendererOption{
		render.WithWidth(m.width),
		render.WithLocale(m.locale),
	}
	if m.cfg.UI.Theme != "" && m.cfg.UI.Theme != "auto" {
		rendererOpts = append(rendererOpts, render.WithStyle(m.cfg.UI.Theme))
	}
	m.renderer = render.NewRenderer(rendererOpts...)
	m.transcript = newTranscript(m.renderer, m.width, m.listHeight())
	m.transcript.viewport.MouseWheelEnabled = m.cfg.UI.MouseWheel

	m.ctrl = session.NewController(session.WithLogger(m.logger))
	m.ctrl.OnAppend(m.transcript.add)
	m.ctrl.OnClear(m.transcript.reset)

	m.input = textinput.New()
	m.input.Placeholder = inputPlaceholder
	m.input.CharLimit = inputCharLimit
	m.input.Prompt = m.theme.InputPrompt.Render("> ")
	m.input.Focus()

	frames := styles.DotsSpinner
	if m.cfg.UI.Theme == "notty" {
		frames = styles.LineSpinner
	}
	m.spinner = spinner.New(
		spinner.WithSpinner(frames.Bubble()),
		spinner.WithStyle(m.theme.Spinner),
	)
	m.help = help.New()

	m.handlers = defaultHandlers()

	if m.cfg.UI.ShowWelcome {
		welcome := m.cfg.UI.Welcome
		if welcome == "" {
			welcome = session.DefaultWelcome
		}
		m.ctrl.Greet(welcome)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Controller returns the conversation controller.
func (m *Model) Controller() *session.Controller {
	return m.ctrl
}

// Messages returns the conversation so far.
func (m *Model) Messages() []model.Message {
	return m.ctrl.Messages()
}

// Input returns the current input text.
func (m *Model) Input() string {
	return m.input.Value()
}

// SetInput replaces the input text.
func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
}

// Confirming reports whether the clear confirmation is open.
func (m *Model) Confirming() bool {
	return m.confirming
}

// Notice returns the visible status notice.
func (m *Model) Notice() string {
	return m.notice
}

// Online returns the last reported connectivity.
func (m *Model) Online() offline.Status {
	return m.online
}

// listHeight is the viewport height left after header and footer.
func (m *Model) listHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 1 {
		h = 1
	}
	return h
}
