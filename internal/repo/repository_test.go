// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/store"
)

var testCatalog = []string{"gemma:7b", "mistral:latest"}

// newTestRepo builds a repository with a file store in a temp dir and
// the test catalog installed, then deletes the auto-created session so
// tests start from an explicit state.
func newTestRepo(t *testing.T) (*Repository, store.Store) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := NewRepository(st)
	require.NoError(t, r.SetCatalog(testCatalog))

	// SetCatalog auto-creates one session; most tests want to control
	// creation themselves, so start from an empty collection.
	r.mu.Lock()
	r.sessions = nil
	r.activeID = ""
	r.mu.Unlock()

	return r, st
}

// =============================================================================
// CREATE / SELECT
// =============================================================================

func TestCreateSession(t *testing.T) {
	r, _ := newTestRepo(t)

	sess, err := r.CreateSession("")
	require.NoError(t, err)

	require.Equal(t, model.DefaultTitle, sess.Title)
	require.Equal(t, "gemma:7b", sess.Model, "model defaults to the catalog's first entry")
	require.True(t, sess.IsEmpty())
	require.Equal(t, sess.ID, r.ActiveID(), "new session becomes active")
}

func TestCreateSession_PreferredModel(t *testing.T) {
	r, _ := newTestRepo(t)

	sess, err := r.CreateSession("mistral:latest")
	require.NoError(t, err)
	require.Equal(t, "mistral:latest", sess.Model)

	// A preferred model the catalog does not know falls back.
	sess2, err := r.CreateSession("gpt-9")
	require.NoError(t, err)
	require.Equal(t, "gemma:7b", sess2.Model)
}

func TestCreateSession_InsertsAtFront(t *testing.T) {
	r, _ := newTestRepo(t)

	first, _ := r.CreateSession("")
	second, _ := r.CreateSession("")

	sessions := r.Sessions()
	require.Len(t, sessions, 2)
	require.Equal(t, second.ID, sessions[0].ID)
	require.Equal(t, first.ID, sessions[1].ID)
}

func TestSelectSession(t *testing.T) {
	r, _ := newTestRepo(t)

	a, _ := r.CreateSession("")
	b, _ := r.CreateSession("")
	require.Equal(t, b.ID, r.ActiveID())

	require.NoError(t, r.SelectSession(a.ID))
	require.Equal(t, a.ID, r.ActiveID())
}

func TestSelectSession_UnknownIDIsNoOp(t *testing.T) {
	r, _ := newTestRepo(t)

	a, _ := r.CreateSession("")
	before := r.Sessions()

	err := r.SelectSession("session_bogus")
	require.True(t, errors.Is(err, ErrSessionNotFound))

	require.Equal(t, a.ID, r.ActiveID(), "active pointer unchanged")
	require.Equal(t, before, r.Sessions(), "collection unchanged")
}

// =============================================================================
// DELETE
// =============================================================================

func TestDeleteSession_ActiveRepair(t *testing.T) {
	r, _ := newTestRepo(t)

	// Collection order is most recent first: [C, B, A].
	a, _ := r.CreateSession("")
	b, _ := r.CreateSession("")
	c, _ := r.CreateSession("")
	_ = a

	require.NoError(t, r.SelectSession(b.ID))
	require.NoError(t, r.DeleteSession(b.ID))

	// Active falls back to the new first element.
	require.Equal(t, c.ID, r.ActiveID())
	require.Equal(t, 2, r.Count())
}

func TestDeleteSession_InactiveKeepsActive(t *testing.T) {
	r, _ := newTestRepo(t)

	a, _ := r.CreateSession("")
	b, _ := r.CreateSession("")

	require.NoError(t, r.DeleteSession(a.ID))
	require.Equal(t, b.ID, r.ActiveID())
}

func TestDeleteSession_LastAutoCreates(t *testing.T) {
	r, _ := newTestRepo(t)

	sess, _ := r.CreateSession("")
	require.NoError(t, r.DeleteSession(sess.ID))

	// With a non-empty catalog, deleting the last session creates a
	// fresh one, the same as the startup auto-create.
	require.Equal(t, 1, r.Count())
	fresh := r.ActiveSession()
	require.NotNil(t, fresh)
	require.NotEqual(t, sess.ID, fresh.ID)
	require.Equal(t, model.DefaultTitle, fresh.Title)
}

func TestDeleteSession_LastWithEmptyCatalog(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	r := NewRepository(st)

	// No catalog: manufacture a session directly through the API.
	sess, err := r.CreateSession("offline-model")
	require.NoError(t, err)

	require.NoError(t, r.DeleteSession(sess.ID))
	require.Equal(t, 0, r.Count())
	require.Equal(t, "", r.ActiveID())
}

func TestDeleteSession_Unknown(t *testing.T) {
	r, _ := newTestRepo(t)
	err := r.DeleteSession("session_bogus")
	require.True(t, errors.Is(err, ErrSessionNotFound))
}

// =============================================================================
// RENAME / MODEL
// =============================================================================

func TestRenameSession(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	require.NoError(t, r.RenameSession(sess.ID, "  Recon Notes  "))
	got, _ := r.Session(sess.ID)
	require.Equal(t, "Recon Notes", got.Title, "title is trimmed")
}

func TestRenameSession_BlankRejected(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	require.NoError(t, r.RenameSession(sess.ID, "   "))
	got, _ := r.Session(sess.ID)
	require.Equal(t, model.DefaultTitle, got.Title, "blank rename keeps prior title")
}

func TestSetSessionModel(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	require.NoError(t, r.SetSessionModel(sess.ID, "mistral:latest"))
	got, _ := r.Session(sess.ID)
	require.Equal(t, "mistral:latest", got.Model)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestAppendMessage_TitleDerivation(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	prompt := "Deploy the satellite constellation now please"
	idx, err := r.AppendMessage(sess.ID, model.NewUserMessage(prompt))
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	got, _ := r.Session(sess.ID)
	want := string([]rune(prompt)[:model.TitleLength])
	require.Equal(t, want, got.Title, "title is the hard-truncated prompt prefix")
}

func TestMutateLastMessage_AssistantOnly(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	r.AppendMessage(sess.ID, model.NewUserMessage("hi"))

	// Last message is a user message: transform must not run.
	called := false
	require.NoError(t, r.MutateLastMessage(sess.ID, func(m *model.Message) {
		called = true
	}))
	require.False(t, called, "transform ran against a user message")

	// With an assistant tail it applies.
	r.AppendMessage(sess.ID, model.NewAssistantMessage())
	require.NoError(t, r.MutateLastMessage(sess.ID, func(m *model.Message) {
		m.AppendFragment("chunk")
	}))

	got, _ := r.Session(sess.ID)
	require.Equal(t, "chunk", got.LastMessage().DisplayContent())
}

func TestReplaceLastMessage(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")

	r.AppendMessage(sess.ID, model.NewUserMessage("hi"))
	r.AppendMessage(sess.ID, model.NewAssistantMessage())

	replacement := model.NewMessage(model.RoleAssistant, "Sorry, an error occurred.")
	require.NoError(t, r.ReplaceLastMessage(sess.ID, replacement))

	got, _ := r.Session(sess.ID)
	require.Equal(t, 2, got.MessageCount())
	require.Equal(t, "Sorry, an error occurred.", got.LastMessage().Content)
}

func TestSnapshot(t *testing.T) {
	r, _ := newTestRepo(t)
	sess, _ := r.CreateSession("")
	r.AppendMessage(sess.ID, model.NewUserMessage("hello"))

	history, modelName, err := r.Snapshot(sess.ID)
	require.NoError(t, err)
	require.Equal(t, "gemma:7b", modelName)
	require.Len(t, history, 1)

	// The snapshot does not alias the live transcript.
	r.AppendMessage(sess.ID, model.NewAssistantMessage())
	require.Len(t, history, 1)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestPersistence_RoundTrip(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := NewRepository(st)
	require.NoError(t, r.SetCatalog(testCatalog))

	sess := r.ActiveSession()
	require.NotNil(t, sess, "catalog install auto-creates a session")
	r.AppendMessage(sess.ID, model.NewUserMessage("remember me"))
	r.RenameSession(sess.ID, "Important")

	// A second repository over the same store sees identical state.
	r2 := NewRepository(st)
	require.Equal(t, r.ActiveID(), r2.ActiveID())

	got := r2.Sessions()
	require.Len(t, got, 1)
	require.Equal(t, sess.ID, got[0].ID)
	require.Equal(t, "Important", got[0].Title)
	require.Equal(t, sess.Model, got[0].Model)
	require.Equal(t, 1, got[0].MessageCount())
	require.Equal(t, "remember me", got[0].Messages[0].Content)
	require.True(t, sess.CreatedAt.Equal(got[0].CreatedAt))
}

func TestNewRepository_RepairsDanglingActive(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	sess := model.NewSession("gemma:7b")
	require.NoError(t, store.SaveSessions(st, []*model.Session{sess}))
	require.NoError(t, store.SaveActiveID(st, "session_gone"))

	r := NewRepository(st)
	require.Equal(t, sess.ID, r.ActiveID(), "dangling pointer repaired to first session")
}

func TestSetCatalog_AutoCreatesOnce(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := NewRepository(st)
	require.Equal(t, 0, r.Count())

	require.NoError(t, r.SetCatalog(testCatalog))
	require.Equal(t, 1, r.Count())

	// Installing the catalog again with sessions present creates nothing.
	require.NoError(t, r.SetCatalog(testCatalog))
	require.Equal(t, 1, r.Count())
}
