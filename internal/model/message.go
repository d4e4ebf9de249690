// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the capitalized role name used for display and export.
func (r Role) DisplayName() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session transcript.
//
// An assistant message starts out accumulating: fragments are appended via
// AppendFragment until Seal is called, after which the content is frozen.
// User messages are created whole and never accumulate.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	Accumulating bool            `json:"-"`
	accumulator  strings.Builder `json:"-"`
}

// NewMessage creates a sealed message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message in the
// accumulating state, ready to receive stream fragments.
func NewAssistantMessage() *Message {
	return &Message{
		ID:           generateMessageID(),
		Role:         RoleAssistant,
		Timestamp:    time.Now(),
		Accumulating: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendFragment appends a stream fragment to an accumulating message.
// Sealed messages are left untouched.
func (m *Message) AppendFragment(fragment string) {
	if m.Accumulating {
		m.accumulator.WriteString(fragment)
	}
}

// Seal finalizes an accumulating message, freezing its content.
// Safe to call on an already sealed message.
func (m *Message) Seal() {
	if !m.Accumulating {
		return
	}
	m.Content = m.accumulator.String()
	m.accumulator.Reset()
	m.Accumulating = false
}

// DisplayContent returns the content to display, whether the message is
// still accumulating or already sealed.
func (m *Message) DisplayContent() string {
	if m.Accumulating {
		return m.accumulator.String()
	}
	return m.Content
}

// IsEmpty returns true if the message has no content yet.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.accumulator.Len() == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.DisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a copy of the message. An accumulating message is cloned
// as sealed with its content so far; the original is left untouched.
func (m *Message) Clone() *Message {
	clone := &Message{
		ID:        m.ID,
		Role:      m.Role,
		Timestamp: m.Timestamp,
		Content:   m.DisplayContent(),
	}
	return clone
}

// MarshalJSON serializes the message with its content so far, so an
// accumulating message persisted mid-stream round-trips as a sealed
// message holding the partial reply.
func (m *Message) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string    `json:"id"`
		Role      Role      `json:"role"`
		Timestamp time.Time `json:"timestamp"`
		Content   string    `json:"content"`
	}
	return json.Marshal(wire{
		ID:        m.ID,
		Role:      m.Role,
		Timestamp: m.Timestamp,
		Content:   m.DisplayContent(),
	})
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}
