// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"

	"github.com/jeranaias/opchat-tui/internal/model"
)

// =============================================================================
// TYPED STATE HELPERS
// =============================================================================

// RELIABILITY: loads never fail. A missing key, an unreadable backend,
// or a corrupt value all decode to the zero state so the app starts
// fresh instead of refusing to launch over a damaged state file.

// LoadSessions reads the persisted session collection.
// Returns an empty slice when nothing usable is stored.
func LoadSessions(s Store) []*model.Session {
	data, found, err := s.Get(KeySessions)
	if err != nil || !found {
		return []*model.Session{}
	}

	var sessions []*model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return []*model.Session{}
	}

	// A stored null decodes to a nil slice; normalize it.
	if sessions == nil {
		return []*model.Session{}
	}
	return sessions
}

// SaveSessions persists the full session collection.
func SaveSessions(s Store, sessions []*model.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return s.Set(KeySessions, data)
}

// LoadActiveID reads the persisted active session ID.
// Returns "" when nothing usable is stored.
func LoadActiveID(s Store) string {
	data, found, err := s.Get(KeyActiveSession)
	if err != nil || !found {
		return ""
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return ""
	}
	return id
}

// SaveActiveID persists the active session ID. An empty ID clears the
// stored value.
func SaveActiveID(s Store, id string) error {
	if id == "" {
		return s.Delete(KeyActiveSession)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.Set(KeyActiveSession, data)
}
