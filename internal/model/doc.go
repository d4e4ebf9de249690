// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
//
// A Session is one independent chat transcript bound to a chosen model.
// Messages are append-only; the only mutable message is the assistant
// message at the tail of the transcript while a reply is still streaming
// in. Once a message is sealed its content never changes again.
//
// # Key Types
//
//   - Role: sender of a message (user or assistant)
//   - Message: a single transcript entry with streaming accumulator
//   - Session: transcript plus identity, title and model binding
//
// # Usage
//
// Create a session and stream a reply into it:
//
//	s := model.NewSession("llama3:8b-instruct-q8_0")
//	s.AppendMessage(model.NewUserMessage("hello"))
//	s.AppendMessage(model.NewAssistantMessage())
//	s.LastMessage().AppendFragment("Greetings, ")
//	s.LastMessage().AppendFragment("Operator.")
//	s.LastMessage().Seal()
package model
