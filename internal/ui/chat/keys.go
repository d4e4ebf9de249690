// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings and shortcuts for the chat interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
// Each binding supports multiple keys and includes help text for documentation.
type KeyMap struct {
	Submit        key.Binding
	Cancel        key.Binding
	Quit          key.Binding
	NewSession    key.Binding
	DeleteSession key.Binding
	NextSession   key.Binding
	PrevSession   key.Binding
	Rename        key.Binding
	CycleModel    key.Binding
	Export        key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Help          key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("Esc/C-c", "cancel streaming"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new session"),
		),
		DeleteSession: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete session"),
		),
		NextSession: key.NewBinding(
			key.WithKeys("ctrl+down", "alt+j"),
			key.WithHelp("C-Down", "next session"),
		),
		PrevSession: key.NewBinding(
			key.WithKeys("ctrl+up", "alt+k"),
			key.WithHelp("C-Up", "prev session"),
		),
		Rename: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "rename session"),
		),
		CycleModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "cycle model"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export markdown"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the most commonly used shortcuts for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewSession, k.Cancel, k.Quit}
}

// FullHelp returns all key bindings, organized into groups.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Conversation
		{k.Submit, k.Cancel, k.CycleModel, k.Export},
		// Sessions
		{k.NewSession, k.DeleteSession, k.NextSession, k.PrevSession, k.Rename},
		// Navigation
		{k.PageUp, k.PageDown, k.Help, k.Quit},
	}
}
