// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opchat-tui/internal/config"
	"github.com/jeranaias/opchat-tui/internal/engine"
	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/provider/mock"
	"github.com/jeranaias/opchat-tui/internal/repo"
	"github.com/jeranaias/opchat-tui/internal/store"
)

// newTestModel wires a chat model to a real repository, a file store in a
// temp dir and the instant mock provider.
func newTestModel(t *testing.T) (*Model, *repo.Repository) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sessions := repo.NewRepository(st)
	if err := sessions.SetCatalog([]string{"gemma:7b", "mistral:latest"}); err != nil {
		t.Fatalf("SetCatalog: %v", err)
	}

	eng := engine.New(sessions, mock.NewInstant())
	cfg := config.Default()

	m := New(sessions, eng, cfg)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, sessions
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// waitSealed polls until the active session's last message stops streaming.
func waitSealed(t *testing.T, m *Model) *model.Message {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !m.engine.IsStreaming(m.sessions.ActiveID()) {
			history := m.activeMessages()
			if len(history) > 0 {
				return history[len(history)-1]
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("stream did not finish in time")
	return nil
}

func TestSubmitPrompt_AppendsAndStreams(t *testing.T) {
	m, sessions := newTestModel(t)

	typeText(m, "hello there")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.input.Value(); got != "" {
		t.Errorf("input not cleared after submit, got %q", got)
	}

	last := waitSealed(t, m)
	if last.Role != model.RoleAssistant {
		t.Fatalf("last message role = %q, want assistant", last.Role)
	}
	if !strings.Contains(last.DisplayContent(), "Greetings, Operator") {
		t.Errorf("unexpected reply: %q", last.DisplayContent())
	}

	sess := sessions.ActiveSession()
	if sess.Title == model.DefaultTitle {
		t.Error("title not derived from first prompt")
	}
}

func TestSubmitPrompt_BlankKeepsTranscript(t *testing.T) {
	m, sessions := newTestModel(t)

	typeText(m, "   ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if n := sessions.ActiveSession().MessageCount(); n != 0 {
		t.Errorf("blank prompt appended %d messages", n)
	}
}

func TestNewSessionKey(t *testing.T) {
	m, sessions := newTestModel(t)
	before := sessions.Count()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	if got := sessions.Count(); got != before+1 {
		t.Errorf("Count() = %d after ctrl+n, want %d", got, before+1)
	}
}

func TestCycleModelKey(t *testing.T) {
	m, sessions := newTestModel(t)
	before := sessions.ActiveSession().Model

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})

	after := sessions.ActiveSession().Model
	if after == before {
		t.Error("model did not change after cycle")
	}
}

func TestRenameFlow(t *testing.T) {
	m, sessions := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.renaming {
		t.Fatal("ctrl+r did not enter rename mode")
	}

	m.rename.SetValue("Orbital Checklist")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.renaming {
		t.Error("rename mode still active after enter")
	}
	if got := sessions.ActiveSession().Title; got != "Orbital Checklist" {
		t.Errorf("Title = %q, want %q", got, "Orbital Checklist")
	}
}

func TestRenameEscapeKeepsTitle(t *testing.T) {
	m, sessions := newTestModel(t)
	before := sessions.ActiveSession().Title

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m.rename.SetValue("discarded")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if got := sessions.ActiveSession().Title; got != before {
		t.Errorf("Title = %q after escape, want %q", got, before)
	}
}

func TestDeleteSessionKey_AutoCreatesReplacement(t *testing.T) {
	m, sessions := newTestModel(t)
	oldID := sessions.ActiveID()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})

	// Deleting the last session spawns a fresh one.
	if sessions.Count() != 1 {
		t.Fatalf("Count() = %d after delete, want 1", sessions.Count())
	}
	if sessions.ActiveID() == oldID {
		t.Error("active session not replaced")
	}
}

func TestStepSessionWraps(t *testing.T) {
	m, sessions := newTestModel(t)
	if _, err := sessions.CreateSession(""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	first := sessions.ActiveID()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	second := sessions.ActiveID()
	if second == first {
		t.Fatal("next-session did not move")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlDown})
	if got := sessions.ActiveID(); got != first {
		t.Errorf("next-session did not wrap, active = %q, want %q", got, first)
	}
}

func TestView_RendersSidebarAndStatus(t *testing.T) {
	m, _ := newTestModel(t)

	out := m.View()
	if !strings.Contains(out, "Sessions") {
		t.Error("view missing sidebar title")
	}
	if !strings.Contains(out, "ready") {
		t.Error("view missing idle status")
	}
	if !strings.Contains(out, model.DefaultTitle) {
		t.Error("view missing default session title")
	}
}
