// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat interface as a Bubble Tea
// model: a session sidebar, a scrolling transcript viewport, the prompt
// input and a status bar.
//
// # Key Types
//
//   - Model: the Bubble Tea model; renders from the session repository
//     and drives the streaming engine
//   - KeyMap: keyboard bindings with generated help text
//   - StreamingBuffer: caps transcript re-renders to a frame rate while
//     fragments stream in
//
// # Usage
//
// The model holds no transcript state of its own. Engine events arrive as
// EngineEventMsg via Program.Send and every render reads a sealed snapshot
// from the repository, so a stream for an off-screen session never touches
// the visible viewport.
package chat
