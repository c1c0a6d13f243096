// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ACTIONS
// =============================================================================

// Action is a user intent a key can be bound to.
type Action int

const (
	ActionNone Action = iota
	ActionSubmit
	ActionClear
	ActionCopy
	ActionExport
	ActionScrollUp
	ActionScrollDown
	ActionPageUp
	ActionPageDown
	ActionTop
	ActionBottom
	ActionHelp
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:       "none",
	ActionSubmit:     "submit",
	ActionClear:      "clear",
	ActionCopy:       "copy",
	ActionExport:     "export",
	ActionScrollUp:   "scroll-up",
	ActionScrollDown: "scroll-down",
	ActionPageUp:     "page-up",
	ActionPageDown:   "page-down",
	ActionTop:        "top",
	ActionBottom:     "bottom",
	ActionHelp:       "help",
	ActionQuit:       "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings of the chat screen. Letter keys are
// avoided so typing never triggers an action.
type KeyMap struct {
	Submit     key.Binding
	Clear      key.Binding
	Copy       key.Binding
	Export     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Confirmation overlay
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear chat"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy answer"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("C-Home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("C-End", "go to bottom"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/Esc", "no"),
		),
	}
}

// bindings lists every action binding in resolution order.
func (k KeyMap) bindings() []struct {
	binding key.Binding
	action  Action
} {
	return []struct {
		binding key.Binding
		action  Action
	}{
		{k.Quit, ActionQuit},
		{k.Submit, ActionSubmit},
		{k.Clear, ActionClear},
		{k.Copy, ActionCopy},
		{k.Export, ActionExport},
		{k.ScrollUp, ActionScrollUp},
		{k.ScrollDown, ActionScrollDown},
		{k.PageUp, ActionPageUp},
		{k.PageDown, ActionPageDown},
		{k.Top, ActionTop},
		{k.Bottom, ActionBottom},
		{k.Help, ActionHelp},
	}
}

// Resolve maps a key press to its action, or ActionNone.
func (k KeyMap) Resolve(msg tea.KeyMsg) Action {
	for _, b := range k.bindings() {
		if key.Matches(msg, b.binding) {
			return b.action
		}
	}
	return ActionNone
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Clear, k.Copy, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Clear, k.Copy, k.Export},
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown},
		{k.Top, k.Bottom, k.Help, k.Quit},
	}
}
