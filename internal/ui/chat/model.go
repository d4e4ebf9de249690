// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opchat-tui/internal/config"
	"github.com/jeranaias/opchat-tui/internal/engine"
	"github.com/jeranaias/opchat-tui/internal/export"
	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/repo"
	"github.com/jeranaias/opchat-tui/internal/ui/styles"
)

// =============================================================================
// MODEL DEFINITION
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
// It owns no transcript state of its own; the session repository is the
// single source of truth and the view is re-rendered from it.
type Model struct {
	sessions *repo.Repository
	engine   *engine.Engine
	cfg      *config.Config
	theme    *styles.Theme
	keys     KeyMap

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	buffer   *StreamingBuffer

	width  int
	height int
	ready  bool

	renaming bool
	rename   textinput.Model

	showHelp bool
	notice   string
	ticking  bool
}

// New creates the chat model wired to the repository and streaming engine.
func New(sessions *repo.Repository, eng *engine.Engine, cfg *config.Config) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 0
	input.Focus()

	rename := textinput.New()
	rename.Prompt = theme.InputPrompt.Render("Title: ")
	rename.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	return &Model{
		sessions: sessions,
		engine:   eng,
		cfg:      cfg,
		theme:    theme,
		keys:     DefaultKeyMap(),
		input:    input,
		rename:   rename,
		spin:     spin,
		buffer:   NewStreamingBuffer(15, cfg.UI.StreamFPS),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript(true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EngineEventMsg:
		return m.handleEngineEvent(msg.Event)

	case StreamTickMsg:
		if m.buffer.ShouldRender() {
			m.refreshTranscript(true)
			m.buffer.MarkRendered()
		}
		if m.engine.IsGenerating() {
			return m, streamTickCmd(m.buffer.Interval())
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		if !m.engine.IsGenerating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ModelsLoadedMsg:
		if msg.Err != nil {
			m.notice = "model catalog unavailable, retry by restarting"
		} else {
			m.notice = fmt.Sprintf("%d models available", len(msg.Models))
		}
		m.refreshTranscript(true)
		return m, clearNoticeCmd()

	case ExportResultMsg:
		if msg.Err != nil {
			m.notice = "export failed: " + msg.Err.Error()
		} else {
			m.notice = "exported to " + msg.Path
		}
		return m, clearNoticeCmd()

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.theme = styles.NewTheme(msg.Config.UI.Theme)
		m.buffer = NewStreamingBuffer(15, msg.Config.UI.StreamFPS)
		m.refreshTranscript(true)
		m.notice = "configuration reloaded"
		return m, clearNoticeCmd()

	case StatusClearMsg:
		m.notice = ""
		return m, nil
	}

	// Forward everything else to the focused text input.
	var cmd tea.Cmd
	if m.renaming {
		m.rename, cmd = m.rename.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.renaming {
		return m.handleRenameKey(msg)
	}

	activeID := m.sessions.ActiveID()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.engine.IsStreaming(activeID) {
			m.engine.Cancel(activeID)
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitPrompt(activeID)

	case key.Matches(msg, m.keys.NewSession):
		if _, err := m.sessions.CreateSession(m.cfg.DefaultModel); err == nil {
			m.buffer.Reset()
			m.refreshTranscript(true)
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteSession):
		if activeID != "" {
			if err := m.engine.DeleteSession(activeID); err == nil {
				m.buffer.Reset()
				m.refreshTranscript(true)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.NextSession):
		m.stepSession(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevSession):
		m.stepSession(-1)
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		if sess := m.sessions.ActiveSession(); sess != nil {
			m.renaming = true
			m.rename.SetValue(sess.Title)
			m.rename.CursorEnd()
			m.rename.Focus()
			m.input.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleModel):
		m.cycleModel(activeID)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.resize(m.width, m.height)
		m.refreshTranscript(false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id := m.sessions.ActiveID()
		if err := m.sessions.RenameSession(id, m.rename.Value()); err == nil {
			m.refreshTranscript(false)
		}
		m.exitRename()
		return m, nil
	case "esc", "ctrl+c":
		m.exitRename()
		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) exitRename() {
	m.renaming = false
	m.rename.Blur()
	m.rename.SetValue("")
	m.input.Focus()
}

// =============================================================================
// ACTIONS
// =============================================================================

// submitPrompt sends the input box content to the streaming engine.
// Blank prompts and prompts for a session that is already streaming
// are dropped without clearing the input.
func (m *Model) submitPrompt(activeID string) (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if activeID == "" || m.engine.IsStreaming(activeID) {
		return m, nil
	}

	if err := m.engine.SendMessage(activeID, text); err != nil {
		return m, nil
	}

	m.input.SetValue("")
	m.refreshTranscript(true)

	cmds := []tea.Cmd{m.spin.Tick}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd(m.buffer.Interval()))
	}
	return m, tea.Batch(cmds...)
}

// stepSession moves the active session up or down the sidebar list.
func (m *Model) stepSession(delta int) {
	list := m.sessions.Sessions()
	if len(list) == 0 {
		return
	}

	activeID := m.sessions.ActiveID()
	idx := 0
	for i, sess := range list {
		if sess.ID == activeID {
			idx = i
			break
		}
	}

	idx += delta
	if idx < 0 {
		idx = len(list) - 1
	} else if idx >= len(list) {
		idx = 0
	}

	if err := m.sessions.SelectSession(list[idx].ID); err == nil {
		m.buffer.Reset()
		m.refreshTranscript(true)
	}
}

// cycleModel switches the active session to the next catalog model.
func (m *Model) cycleModel(activeID string) {
	sess := m.sessions.ActiveSession()
	catalog := m.sessions.Catalog()
	if sess == nil || len(catalog) == 0 {
		return
	}

	next := catalog[0]
	for i, name := range catalog {
		if name == sess.Model {
			next = catalog[(i+1)%len(catalog)]
			break
		}
	}

	if err := m.sessions.SetSessionModel(activeID, next); err == nil {
		m.refreshTranscript(false)
	}
}

// exportCmd writes the active session transcript to a markdown file.
func (m *Model) exportCmd() tea.Cmd {
	id := m.sessions.ActiveID()
	sess, ok := m.sessions.Session(id)
	if !ok {
		return nil
	}
	history, _, err := m.sessions.Snapshot(id)
	if err != nil {
		return nil
	}
	snapshot := &model.Session{
		ID:        sess.ID,
		Title:     sess.Title,
		Model:     sess.Model,
		CreatedAt: sess.CreatedAt,
		Messages:  history,
	}
	dir := m.cfg.Export.Dir

	return func() tea.Msg {
		path, err := export.WriteToFile(snapshot, export.NewMarkdownExporter(), dir)
		return ExportResultMsg{Path: path, Err: err}
	}
}

// =============================================================================
// ENGINE EVENTS
// =============================================================================

func (m *Model) handleEngineEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case engine.EventFragment:
		m.buffer.Note()
		// Off-screen sessions still stream; only re-render for the
		// visible one, and let the tick loop pace it.
		if ev.SessionID == m.sessions.ActiveID() && m.buffer.ShouldRender() {
			m.refreshTranscript(true)
			m.buffer.MarkRendered()
		}
		return m, nil

	case engine.EventStarted:
		cmds := []tea.Cmd{m.spin.Tick}
		if !m.ticking {
			m.ticking = true
			cmds = append(cmds, streamTickCmd(m.buffer.Interval()))
		}
		m.refreshTranscript(true)
		return m, tea.Batch(cmds...)

	case engine.EventCompleted, engine.EventFailed, engine.EventCanceled:
		m.refreshTranscript(true)
		m.buffer.MarkRendered()
		return m, nil
	}

	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// activeMessages returns a sealed snapshot of the active transcript.
// The engine mutates the accumulating tail from its own goroutines, so
// rendering always works from a repository snapshot.
func (m *Model) activeMessages() []*model.Message {
	history, _, err := m.sessions.Snapshot(m.sessions.ActiveID())
	if err != nil {
		return nil
	}
	return history
}

// noticeDuration is how long transient status bar notices stay visible.
const noticeDuration = 4 * time.Second

// clearNoticeCmd schedules the status bar notice to disappear.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return StatusClearMsg{}
	})
}
