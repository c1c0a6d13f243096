// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/transport"
)

// =============================================================================
// FIXED TEXTS
// =============================================================================

const (
	// DefaultWelcome is the greeting shown when a conversation starts.
	DefaultWelcome = "Hello! 👋 I'm here to help you with N8N questions. Ask me anything about workflows, nodes, integrations, or any other N8N feature."

	// ClearedGreeting is the only message left after a confirmed clear.
	ClearedGreeting = "Chat cleared! What can I help you with?"

	// ClearPrompt is the confirmation question asked before clearing.
	ClearPrompt = "Are you sure you want to clear the entire conversation?"

	// ConnectionLostText is appended when the network goes away.
	ConnectionLostText = "Connection lost. Please check your internet connection."

	// ConnectionRestoredText is appended when the network comes back after a loss.
	ConnectionRestoredText = "Connection restored."

	// UnexpectedErrorText replaces the reply when a submission panics.
	UnexpectedErrorText = "An unexpected error occurred. Please try again."

	errorPrefix = "Sorry, I encountered an error: "
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned by Begin for blank or whitespace-only input.
	// It is never shown to the user.
	ErrEmptyInput = errors.New("question is empty")

	// ErrBusy is returned by Begin while a submission is in flight.
	ErrBusy = errors.New("a question is already being answered")
)

// FailureText is the assistant message content for a failed exchange.
func FailureText(err error) string {
	return errorPrefix + err.Error()
}

// =============================================================================
// STATE
// =============================================================================

// State is the controller's submission state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sender answers questions. *transport.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, question string) (*transport.Answer, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation and the submission state.
type Controller struct {
	conv   *model.Conversation
	state  State
	lost   bool
	logger zerolog.Logger

	onAppend []func(model.Message)
	onClear  []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates an idle controller with an empty conversation.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		conv:   model.NewConversation(),
		state:  StateIdle,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnAppend registers fn to be called once for every appended message.
func (c *Controller) OnAppend(fn func(model.Message)) {
	c.onAppend = append(c.onAppend, fn)
}

// OnClear registers fn to be called when the conversation is emptied,
// before the replacement greeting is appended.
func (c *Controller) OnClear(fn func()) {
	c.onClear = append(c.onClear, fn)
}

func (c *Controller) append(msg model.Message) model.Message {
	c.conv.Append(msg)
	for _, fn := range c.onAppend {
		fn(msg)
	}
	return msg
}

// ==========================================================================
// QUERIES
// ==========================================================================

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// ControlsEnabled reports whether input and send controls accept the user.
// They are disabled exactly while a submission is in flight.
func (c *Controller) ControlsEnabled() bool {
	return c.state == StateIdle
}

// SendEnabled reports whether submitting input right now would start an
// exchange.
func (c *Controller) SendEnabled(input string) bool {
	return c.state == StateIdle && strings.TrimSpace(input) != ""
}

// Messages returns a copy of the conversation.
func (c *Controller) Messages() []model.Message {
	return c.conv.Messages()
}

// Len returns the number of messages.
func (c *Controller) Len() int {
	return c.conv.Len()
}

// LastAnswer returns the most recent successful assistant message.
func (c *Controller) LastAnswer() (model.Message, bool) {
	return c.conv.LastAnswer()
}

// Conversation returns a snapshot of the conversation for export.
func (c *Controller) Conversation() *model.Conversation {
	snap := &model.Conversation{
		ID:        c.conv.ID,
		CreatedAt: c.conv.CreatedAt,
		UpdatedAt: c.conv.UpdatedAt,
	}
	for _, msg := range c.conv.Messages() {
		snap.Append(msg)
	}
	snap.UpdatedAt = c.conv.UpdatedAt
	return snap
}

// ==========================================================================
// TRANSITIONS
// ==========================================================================

// Greet appends an assistant greeting. Empty text appends nothing.
func (c *Controller) Greet(text string) (model.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, false
	}
	return c.append(model.NewAssistantMessage(text)), true
}

// Begin validates input, appends it as a user message and enters Submitting.
// It returns the trimmed question to send.
func (c *Controller) Begin(input string) (string, error) {
	question := strings.TrimSpace(input)
	if question == "" {
		return "", ErrEmptyInput
	}
	if c.state == StateSubmitting {
		return "", ErrBusy
	}

	c.append(model.NewUserMessage(question))
	c.state = StateSubmitting
	c.logger.Debug().Int("len", len(question)).Msg("submission started")
	return question, nil
}

// Settle ends a submission. A nil err appends answer; otherwise an
// error-flagged message describing err is appended. The state returns to Idle
// in both cases.
func (c *Controller) Settle(answer string, err error) model.Message {
	defer func() { c.state = StateIdle }()

	if err != nil {
		c.logger.Warn().Err(err).Msg("submission failed")
		return c.append(model.NewErrorMessage(FailureText(err)))
	}

	c.logger.Debug().Int("len", len(answer)).Msg("submission answered")
	return c.append(model.NewAssistantMessage(answer))
}

// Clear asks confirm and, on yes, replaces the conversation with the single
// cleared greeting. A nil confirm clears unconditionally. Clearing is allowed
// in any state.
func (c *Controller) Clear(confirm func() bool) bool {
	if confirm != nil && !confirm() {
		return false
	}

	for _, fn := range c.onClear {
		fn()
	}
	greeting := c.conv.Reset(ClearedGreeting)
	for _, fn := range c.onAppend {
		fn(greeting)
	}
	c.logger.Info().Msg("conversation cleared")
	return true
}

// ConnectionLost records a loss of connectivity and appends the notice.
func (c *Controller) ConnectionLost() model.Message {
	c.lost = true
	c.logger.Warn().Msg("connection lost")
	return c.append(model.NewErrorMessage(ConnectionLostText))
}

// ConnectionRestored appends the restored notice, but only after a recorded
// loss.
func (c *Controller) ConnectionRestored() (model.Message, bool) {
	if !c.lost {
		return model.Message{}, false
	}
	c.lost = false
	c.logger.Info().Msg("connection restored")
	return c.append(model.NewAssistantMessage(ConnectionRestoredText)), true
}

// Recover handles a failure nothing else caught: it appends the generic error
// notice and forces the state back to Idle.
func (c *Controller) Recover(cause any) model.Message {
	c.logger.Error().Interface("cause", cause).Msg("unexpected error")
	c.state = StateIdle
	return c.append(model.NewErrorMessage(UnexpectedErrorText))
}

// Submit runs a full exchange synchronously: Begin, Send, Settle.
// Only validation errors from Begin are returned; exchange failures become
// messages. A panic in sender is routed to Recover.
func (c *Controller) Submit(ctx context.Context, sender Sender, input string) error {
	question, err := c.Begin(input)
	if err != nil {
		return err
	}

	answer, err := Send(ctx, sender, question)
	var pe *PanicError
	if errors.As(err, &pe) {
		c.Recover(pe.Value)
		return nil
	}
	c.Settle(answer, err)
	return nil
}

// PanicError carries a panic recovered inside Send.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Send performs one exchange with sender. A panic inside sender is returned
// as a *PanicError, which callers route to Recover rather than Settle.
func Send(ctx context.Context, sender Sender, question string) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	resp, err := sender.Send(ctx, question)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", transport.ErrMalformedResponse
	}
	return resp.Answer, nil
}
