// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements layout and rendering: the session sidebar, the
// transcript viewport, the input area and the status bar.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opchat-tui/internal/engine"
	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/ui/components"
	"github.com/jeranaias/opchat-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1
	minMainWidth = 40
)

// resize recomputes the layout for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	mainWidth := m.mainWidth()
	viewportHeight := height - headerHeight - inputHeight - statusHeight
	if m.showHelp {
		viewportHeight -= len(m.keys.FullHelp()) + 1
	}
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(mainWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = viewportHeight
	}

	m.input.Width = mainWidth - 4
	m.rename.Width = mainWidth - 10
}

// sidebarWidth returns the width of the session list column.
// The sidebar collapses on narrow terminals.
func (m *Model) sidebarWidth() int {
	w := m.cfg.UI.SidebarWidth
	if m.width-w < minMainWidth {
		return 0
	}
	return w
}

func (m *Model) mainWidth() int {
	w := m.width - m.sidebarWidth()
	if w < 1 {
		w = 1
	}
	return w
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatus(),
	)

	if sw := m.sidebarWidth(); sw > 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sw), main)
	}
	return main
}

// renderHeader draws the application header with the active session's
// title and bound model.
func (m *Model) renderHeader() string {
	title := "opchat"
	modelName := m.cfg.DefaultModel
	if sess := m.sessions.ActiveSession(); sess != nil {
		title = sess.Title
		modelName = sess.Model
	}

	left := m.theme.HeaderTitle.Render(title)
	right := m.theme.HeaderModel.Render(modelName)

	gap := m.mainWidth() - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.Header.Width(m.mainWidth()).Render(
		left + strings.Repeat(" ", gap) + right,
	)
}

// renderSidebar draws the session list, most recent first.
func (m *Model) renderSidebar(width int) string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Sessions"))
	b.WriteString("\n")

	activeID := m.sessions.ActiveID()
	itemWidth := width - 4
	if itemWidth < 4 {
		itemWidth = 4
	}

	for _, sess := range m.sessions.Sessions() {
		label := util.TruncateWidth(sess.Title, itemWidth)
		switch {
		case sess.ID == activeID:
			b.WriteString(m.theme.SessionItemActive.Render(label))
		case m.engine.IsStreaming(sess.ID):
			b.WriteString(m.theme.SessionItemStreaming.Render(label))
		default:
			b.WriteString(m.theme.SessionItem.Render(label))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(width).
		Height(m.height - 1).
		Render(b.String())
}

// renderInput draws the prompt input area, or the rename field while a
// rename is in progress.
func (m *Model) renderInput() string {
	if m.renaming {
		return m.theme.InputContainer.Width(m.mainWidth()).Render(m.rename.View())
	}
	return m.theme.InputContainer.Width(m.mainWidth()).Render(m.input.View())
}

// renderStatus draws the status bar: stream state, transient notices and
// keyboard shortcuts.
func (m *Model) renderStatus() string {
	var parts []string

	if m.engine.IsStreaming(m.sessions.ActiveID()) {
		parts = append(parts, m.theme.StatusBusy.Render(m.spin.View()+"generating"))
	} else {
		parts = append(parts, m.theme.StatusIdle.Render("ready"))
	}

	if m.notice != "" {
		parts = append(parts, m.theme.StatusBar.Render(m.notice))
	} else {
		for _, binding := range m.keys.ShortHelp() {
			help := binding.Help()
			parts = append(parts,
				m.theme.ShortcutKey.Render(help.Key)+
					m.theme.ShortcutDesc.Render(" "+help.Desc))
		}
	}

	status := strings.Join(parts, m.theme.ShortcutDesc.Render("  |  "))
	out := m.theme.StatusBar.Width(m.mainWidth()).Render(status)

	if m.showHelp {
		return out + "\n" + m.renderHelp()
	}
	return out
}

// renderHelp draws the full help block shown under the status bar.
func (m *Model) renderHelp() string {
	var lines []string
	for _, group := range m.keys.FullHelp() {
		var cols []string
		for _, binding := range group {
			help := binding.Help()
			cols = append(cols,
				m.theme.ShortcutKey.Render(help.Key)+
					m.theme.ShortcutDesc.Render(" "+help.Desc))
		}
		lines = append(lines, strings.Join(cols, "   "))
	}
	return m.theme.StatusBar.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the active transcript into the viewport.
func (m *Model) refreshTranscript(gotoBottom bool) {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// renderTranscript renders the active session's messages.
func (m *Model) renderTranscript() string {
	messages := m.activeMessages()
	if len(messages) == 0 {
		return m.theme.ThinkingText.Render("\n  No messages yet. Say something.")
	}

	width := m.mainWidth() - 4
	if width < 20 {
		width = 20
	}

	streaming := m.engine.IsStreaming(m.sessions.ActiveID())

	blocks := make([]string, 0, len(messages))
	for i, msg := range messages {
		tail := streaming && i == len(messages)-1 && msg.Role == model.RoleAssistant
		blocks = append(blocks, m.renderMessage(msg, width, tail))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage renders one message: a role label line followed by the
// bordered content block. The streaming tail gets a cursor glyph, or a
// thinking indicator while it is still empty.
func (m *Model) renderMessage(msg *model.Message, width int, tail bool) string {
	var label, bubble lipgloss.Style
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel
		bubble = m.theme.UserBubble
	} else {
		label = m.theme.AssistantLabel
		bubble = m.theme.AssistantBubble
	}

	header := label.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04:05"))

	content := msg.DisplayContent()
	var body string
	switch {
	case content == engine.ErrorText:
		body = m.theme.ErrorText.Render(content)
	case content == "" && tail:
		body = m.theme.ThinkingText.Render(fmt.Sprintf("%sthinking...", m.spin.View()))
	default:
		body = components.RenderContent(content, width, m.cfg.UI.SyntaxStyle, m.theme)
		if tail {
			body += m.theme.ThinkingText.Render(" ▌")
		}
	}

	return header + "\n" + bubble.Render(body)
}
