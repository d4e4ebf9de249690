// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages that flow through the chat
// model's Update loop. Engine events and provider results are delivered
// from their goroutines via Program.Send and arrive here as typed messages.
package chat

import (
	"time"

	"github.com/jeranaias/opchat-tui/internal/config"
	"github.com/jeranaias/opchat-tui/internal/engine"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// EngineEventMsg wraps a streaming engine event for the Update loop.
type EngineEventMsg struct {
	Event engine.Event
}

// StreamTickMsg paces transcript re-renders while a stream is active.
type StreamTickMsg struct {
	Time time.Time
}

// ModelsLoadedMsg carries the model catalog fetched at startup.
// Err is set when the provider could not be reached; the session
// repository then falls back to the configured default model.
type ModelsLoadedMsg struct {
	Models []string
	Err    error
}

// ExportResultMsg reports the outcome of a transcript export.
type ExportResultMsg struct {
	Path string
	Err  error
}

// ConfigReloadedMsg carries a freshly reloaded configuration from the
// config file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// StatusClearMsg clears a transient status bar notice.
type StatusClearMsg struct{}
