// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"strings"
	"sync"

	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

// SessionError represents a session-related error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ErrSessionNotFound indicates an operation referenced an unknown session ID.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository owns the ordered session collection (most recent first),
// the active-session pointer and the model catalog. It is safe for
// concurrent use; stream fragments and user actions funnel through the
// same mutex so mutations apply in invocation order.
type Repository struct {
	mu sync.RWMutex

	st       store.Store
	sessions []*model.Session
	activeID string
	catalog  []string
}

// NewRepository creates a repository backed by st, loading whatever
// state the store holds. A corrupt or missing store value degrades to
// an empty collection. An active pointer that no longer references an
// existing session is repaired to the first session, or cleared.
func NewRepository(st store.Store) *Repository {
	r := &Repository{
		st:       st,
		sessions: store.LoadSessions(st),
		activeID: store.LoadActiveID(st),
	}

	if r.indexOf(r.activeID) < 0 {
		if len(r.sessions) > 0 {
			r.activeID = r.sessions[0].ID
		} else {
			r.activeID = ""
		}
	}
	return r
}

// =============================================================================
// CATALOG
// =============================================================================

// SetCatalog installs the model catalog fetched at startup. When the
// catalog becomes non-empty and no sessions exist, one session is
// created automatically so the user always lands in a usable chat.
func (r *Repository) SetCatalog(models []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = make([]string, len(models))
	copy(r.catalog, models)

	if len(r.catalog) > 0 && len(r.sessions) == 0 {
		r.createLocked("")
		return r.persistLocked()
	}
	return nil
}

// Catalog returns a copy of the model catalog.
func (r *Repository) Catalog() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// =============================================================================
// SESSION CRUD
// =============================================================================

// CreateSession creates a session bound to preferredModel if that model
// is in the catalog, else to the catalog's first entry. The session is
// inserted at the front of the collection and made active.
func (r *Repository) CreateSession(preferredModel string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.createLocked(preferredModel)
	return sess, r.persistLocked()
}

// createLocked inserts a fresh session at the front and activates it.
func (r *Repository) createLocked(preferredModel string) *model.Session {
	sess := model.NewSession(r.resolveModelLocked(preferredModel))
	r.sessions = append([]*model.Session{sess}, r.sessions...)
	r.activeID = sess.ID
	return sess
}

// resolveModelLocked picks the model for a new session: the preferred
// one when the catalog knows it, else the catalog's first entry.
func (r *Repository) resolveModelLocked(preferred string) string {
	if preferred != "" {
		for _, m := range r.catalog {
			if m == preferred {
				return preferred
			}
		}
	}
	if len(r.catalog) > 0 {
		return r.catalog[0]
	}
	return preferred
}

// SelectSession makes the session with the given ID active.
// Returns ErrSessionNotFound, with state untouched, for an unknown ID.
func (r *Repository) SelectSession(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(id) < 0 {
		return ErrSessionNotFound
	}
	r.activeID = id
	return r.persistLocked()
}

// DeleteSession removes the session with the given ID. If it was
// active, the new first session becomes active, or the pointer is
// cleared when the collection is empty. When the catalog is non-empty
// and the last session was just deleted, a fresh session is created,
// the same as at startup.
func (r *Repository) DeleteSession(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)

	if r.activeID == id {
		if len(r.sessions) > 0 {
			r.activeID = r.sessions[0].ID
		} else {
			r.activeID = ""
		}
	}

	if len(r.sessions) == 0 && len(r.catalog) > 0 {
		r.createLocked("")
	}

	return r.persistLocked()
}

// RenameSession replaces a session's title. The new title is trimmed
// first; a title that is blank after trimming is rejected and the
// previous title kept.
func (r *Repository) RenameSession(id, newTitle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	trimmed := strings.TrimSpace(newTitle)
	if trimmed == "" {
		return nil
	}

	r.sessions[idx].Title = trimmed
	return r.persistLocked()
}

// SetSessionModel rebinds a session to a different model. Streams
// already in flight keep the model they started with.
func (r *Repository) SetSessionModel(id, modelName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	r.sessions[idx].Model = modelName
	return r.persistLocked()
}

// =============================================================================
// TRANSCRIPT MUTATION
// =============================================================================

// AppendMessage appends a message to a session's transcript and
// returns its index. Appending the first user message to an empty
// transcript derives the session title in the same step.
func (r *Repository) AppendMessage(id string, msg *model.Message) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return -1, ErrSessionNotFound
	}

	msgIdx := r.sessions[idx].AppendMessage(msg)
	return msgIdx, r.persistLocked()
}

// MutateLastMessage applies transform to the last message of a
// session's transcript, but only when that message is an assistant
// message. Any other shape is a silent no-op so a late stream fragment
// can never corrupt a user message.
func (r *Repository) MutateLastMessage(id string, transform func(*model.Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	last := r.sessions[idx].LastMessage()
	if last == nil || last.Role != model.RoleAssistant {
		return nil
	}

	transform(last)
	return r.persistLocked()
}

// ReplaceLastMessage swaps a session's last message wholesale. Used to
// finalize a failed stream with the error text. No-op on an empty
// transcript.
func (r *Repository) ReplaceLastMessage(id string, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	r.sessions[idx].ReplaceLastMessage(msg)
	return r.persistLocked()
}

// Snapshot returns a sealed copy of a session's transcript together
// with its bound model, for handing to a completion backend while the
// live transcript keeps changing.
func (r *Repository) Snapshot(id string) ([]*model.Message, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, "", ErrSessionNotFound
	}

	sess := r.sessions[idx]
	return sess.History(), sess.Model, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Sessions returns the collection in order, most recent first.
// The returned slice is a copy; the sessions themselves are shared and
// must be treated as read-only by callers.
func (r *Repository) Sessions() []*model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Session returns the session with the given ID.
func (r *Repository) Session(id string) (*model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return r.sessions[idx], true
}

// ActiveID returns the active session's ID, or "" when none is active.
func (r *Repository) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// ActiveSession returns the active session, or nil when none is active.
func (r *Repository) ActiveSession() *model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(r.activeID)
	if idx < 0 {
		return nil
	}
	return r.sessions[idx]
}

// Count returns the number of sessions.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// =============================================================================
// INTERNAL
// =============================================================================

// indexOf returns the position of a session ID, or -1. Callers hold
// at least the read lock.
func (r *Repository) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked mirrors the collection and active pointer to the
// store. Called with the write lock held after every mutation.
func (r *Repository) persistLocked() error {
	if err := store.SaveSessions(r.st, r.sessions); err != nil {
		return err
	}
	return store.SaveActiveID(r.st, r.activeID)
}
