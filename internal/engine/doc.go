// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives in-flight generations: it turns a user prompt
// into a pair of transcript appends (the user message and an empty
// assistant placeholder), opens a completion stream, and merges the
// arriving fragments into the placeholder until the stream ends.
//
// One stream runs per session at most. A new send for a session with a
// live stream cancels the old one first; a per-session generation
// counter lets fragments from the superseded stream be detected and
// dropped at apply time, so two generations can never interleave in
// one transcript. A failed stream replaces the placeholder with a
// fixed error message rather than leaving a partial-fragment mix.
//
// # Key Types
//
//   - Engine: SendMessage, Cancel, DeleteSession, IsGenerating
//   - Event / EventKind: notifications for the presentation layer
//
// # Usage
//
//	e := engine.New(r, prov)
//	e.SetListener(func(ev engine.Event) { program.Send(ev) })
//	e.SendMessage("session_abc", "hello")
package engine
