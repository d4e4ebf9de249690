// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title given to freshly created sessions before the
// first user message derives a real one.
const DefaultTitle = "New Mission"

// TitleLength is the number of runes taken from the first user message
// when deriving a session title. Truncation is hard, not rounded to a
// word boundary.
const TitleLength = 30

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one chat transcript bound to a chosen model.
type Session struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`

	// Model binding
	Model string `json:"model"`

	// Transcript, chronological and append-only except for
	// the accumulating tail during streaming.
	Messages []*Message `json:"messages"`
}

// NewSession creates a new session with a generated ID, the default title
// and an empty transcript.
func NewSession(modelName string) *Session {
	return &Session{
		ID:        generateSessionID(),
		Title:     DefaultTitle,
		Model:     modelName,
		CreatedAt: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// TRANSCRIPT MANAGEMENT
// =============================================================================

// AppendMessage appends a message to the transcript and returns its index.
// If this is the first user message of a previously empty transcript, the
// session title is derived from its content in the same step so concurrent
// renders never observe the append without the title.
func (s *Session) AppendMessage(msg *Message) int {
	if len(s.Messages) == 0 && msg.Role == RoleUser {
		s.Title = DeriveTitle(msg.Content)
	}
	s.Messages = append(s.Messages, msg)
	return len(s.Messages) - 1
}

// LastMessage returns the most recent message, or nil if the transcript
// is empty.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// ReplaceLastMessage swaps the last message of the transcript wholesale.
// No-op on an empty transcript.
func (s *Session) ReplaceLastMessage(msg *Message) {
	if len(s.Messages) == 0 {
		return
	}
	s.Messages[len(s.Messages)-1] = msg
}

// MessageCount returns the number of messages in the transcript.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if the transcript has no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// History returns a snapshot of the transcript as sealed value copies.
// The snapshot is safe to hand to a completion backend while the live
// transcript keeps mutating.
func (s *Session) History() []*Message {
	history := make([]*Message, len(s.Messages))
	for i, msg := range s.Messages {
		history[i] = msg.Clone()
	}
	return history
}

// Clone creates a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:        s.ID,
		Title:     s.Title,
		Model:     s.Model,
		CreatedAt: s.CreatedAt,
		Messages:  s.History(),
	}
	return clone
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle derives a session title from the first user message:
// the first TitleLength runes, hard-truncated.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= TitleLength {
		return content
	}
	return string(runes[:TitleLength])
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "session_" + uuid.NewString()
}
