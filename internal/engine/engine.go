// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/provider"
	"github.com/jeranaias/opchat-tui/internal/repo"
)

// ErrorText is the fixed assistant message shown when a stream fails.
const ErrorText = "Sorry, an error occurred."

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies engine notifications.
type EventKind int

const (
	// EventStarted fires after the placeholder is appended and the
	// stream request is underway.
	EventStarted EventKind = iota

	// EventFragment fires after a fragment has been applied.
	EventFragment

	// EventCompleted fires when a stream ends normally.
	EventCompleted

	// EventFailed fires when a stream ends with an error and the
	// placeholder was replaced with ErrorText.
	EventFailed

	// EventCanceled fires when a stream is canceled by a new send,
	// an explicit cancel, or a session delete.
	EventCanceled
)

// Event notifies the presentation layer of streaming progress.
// Events carry no transcript data; the listener re-reads the
// repository, which is the single source of truth.
type Event struct {
	Kind      EventKind
	SessionID string
}

// Listener receives engine events. Called from the streaming
// goroutine, so implementations must be safe to invoke off the main
// loop (Bubble Tea's Program.Send is).
type Listener func(Event)

// =============================================================================
// ENGINE
// =============================================================================

// inflight tracks one live stream.
type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// Engine coordinates one in-flight generation per session.
type Engine struct {
	repo *repo.Repository
	prov provider.Provider

	mu sync.Mutex
	// generation counts sends per session; fragments carry the
	// generation they belong to and are dropped when it is stale.
	generations map[string]uint64
	streams     map[string]*inflight
	listener    Listener
}

// New creates an engine over the given repository and provider.
func New(r *repo.Repository, p provider.Provider) *Engine {
	return &Engine{
		repo:        r,
		prov:        p,
		generations: make(map[string]uint64),
		streams:     make(map[string]*inflight),
	}
}

// SetListener installs the event listener. Pass nil to remove it.
func (e *Engine) SetListener(fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = fn
}

// emit delivers an event outside the engine lock.
func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	fn := e.listener
	e.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// IsGenerating reports whether any session has a live stream. The
// presentation layer uses this to disable input; transcript
// correctness never depends on it.
func (e *Engine) IsGenerating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.streams) > 0
}

// IsStreaming reports whether the given session has a live stream.
func (e *Engine) IsStreaming(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.streams[sessionID]
	return ok
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage appends promptText as a user message, opens a completion
// stream for the session's model, and streams the reply into a fresh
// assistant placeholder. A blank prompt or an unknown session is
// rejected without touching state. A live stream for the same session
// is canceled before the new prompt is appended.
func (e *Engine) SendMessage(sessionID, promptText string) error {
	if strings.TrimSpace(promptText) == "" {
		return nil
	}
	if _, ok := e.repo.Session(sessionID); !ok {
		return repo.ErrSessionNotFound
	}

	// Supersede any live stream before the new placeholder exists, so
	// its fragments can never land after ours is created.
	e.cancelStream(sessionID, true)

	if _, err := e.repo.AppendMessage(sessionID, model.NewUserMessage(promptText)); err != nil {
		return err
	}

	// History snapshot is taken now, up to and including the user
	// message; later title or model renames do not affect this stream.
	history, modelName, err := e.repo.Snapshot(sessionID)
	if err != nil {
		return err
	}

	if _, err := e.repo.AppendMessage(sessionID, model.NewAssistantMessage()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.generations[sessionID]++
	gen := e.generations[sessionID]
	e.streams[sessionID] = &inflight{generation: gen, cancel: cancel}
	e.mu.Unlock()

	go e.run(ctx, sessionID, gen, history, modelName)

	e.emit(Event{Kind: EventStarted, SessionID: sessionID})
	return nil
}

// run consumes one completion stream. It owns the assistant tail of
// the session for as long as its generation is current.
func (e *Engine) run(ctx context.Context, sessionID string, gen uint64, history []*model.Message, modelName string) {
	ch, err := e.prov.StreamCompletion(ctx, history, modelName)
	if err != nil {
		e.finishError(sessionID, gen)
		return
	}

	for frag := range ch {
		if frag.Err != nil {
			if ctx.Err() != nil {
				// Canceled streams are finalized by cancelStream.
				return
			}
			e.finishError(sessionID, gen)
			return
		}
		if frag.Done {
			e.finishOK(sessionID, gen)
			return
		}
		if !e.applyFragment(sessionID, gen, frag.Text) {
			return
		}
	}

	// Channel closed without a terminal fragment: treat as normal end
	// unless we were canceled.
	if ctx.Err() == nil {
		e.finishOK(sessionID, gen)
	}
}

// applyFragment appends one fragment to the assistant tail, unless the
// stream has been superseded. Returns false when the fragment was
// dropped because the generation is stale.
func (e *Engine) applyFragment(sessionID string, gen uint64, text string) bool {
	// The generation check and the repository mutation happen under
	// one lock so a supersede cannot slip between them.
	e.mu.Lock()
	if e.generations[sessionID] != gen {
		e.mu.Unlock()
		return false
	}
	err := e.repo.MutateLastMessage(sessionID, func(m *model.Message) {
		m.AppendFragment(text)
	})
	e.mu.Unlock()

	if err != nil {
		// Session deleted out from under the stream.
		return false
	}
	e.emit(Event{Kind: EventFragment, SessionID: sessionID})
	return true
}

// finishOK seals the assistant tail and returns the session to idle.
func (e *Engine) finishOK(sessionID string, gen uint64) {
	e.mu.Lock()
	if e.generations[sessionID] != gen {
		e.mu.Unlock()
		return
	}
	e.repo.MutateLastMessage(sessionID, func(m *model.Message) {
		m.Seal()
	})
	delete(e.streams, sessionID)
	e.mu.Unlock()

	e.emit(Event{Kind: EventCompleted, SessionID: sessionID})
}

// finishError replaces the assistant tail with the fixed error text.
// Partial fragments are discarded; the final content is exactly
// ErrorText.
func (e *Engine) finishError(sessionID string, gen uint64) {
	e.mu.Lock()
	if e.generations[sessionID] != gen {
		e.mu.Unlock()
		return
	}
	e.repo.ReplaceLastMessage(sessionID, model.NewMessage(model.RoleAssistant, ErrorText))
	delete(e.streams, sessionID)
	e.mu.Unlock()

	e.emit(Event{Kind: EventFailed, SessionID: sessionID})
}

// =============================================================================
// CANCEL / DELETE
// =============================================================================

// Cancel stops the session's live stream, if any. Content already
// applied stays in the transcript; the assistant tail is sealed where
// it stands.
func (e *Engine) Cancel(sessionID string) {
	if e.cancelStream(sessionID, true) {
		e.emit(Event{Kind: EventCanceled, SessionID: sessionID})
	}
}

// DeleteSession cancels any live stream for the session and then
// removes it from the repository.
func (e *Engine) DeleteSession(sessionID string) error {
	e.cancelStream(sessionID, false)
	return e.repo.DeleteSession(sessionID)
}

// cancelStream detaches and cancels the session's live stream.
// Bumping the generation makes any fragment still in flight stale.
// When seal is set the accumulating tail is finalized where it stands.
// Returns true if a stream was actually canceled.
func (e *Engine) cancelStream(sessionID string, seal bool) bool {
	e.mu.Lock()
	st, ok := e.streams[sessionID]
	if !ok {
		e.mu.Unlock()
		return false
	}
	delete(e.streams, sessionID)
	e.generations[sessionID]++
	st.cancel()

	if seal {
		e.repo.MutateLastMessage(sessionID, func(m *model.Message) {
			m.Seal()
		})
	}
	e.mu.Unlock()
	return true
}
