// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opchat-tui/internal/segment"
	"github.com/jeranaias/opchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE CONTENT RENDERER
// =============================================================================

// RenderContent renders message content for the transcript viewport.
// Fenced code blocks are split out and rendered with syntax highlighting;
// everything else is word-wrapped plain text.
func RenderContent(content string, width int, syntaxStyle string, theme *styles.Theme) string {
	segs := segment.Split(content)
	if len(segs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		switch seg.Kind {
		case segment.KindCode:
			block := CodeBlock{
				Language:    seg.Language,
				Code:        seg.Body,
				MaxWidth:    width,
				SyntaxStyle: syntaxStyle,
			}
			parts = append(parts, block.Render(theme))
		default:
			text := strings.TrimRight(seg.Body, "\n")
			parts = append(parts, lipgloss.NewStyle().Width(width).Render(text))
		}
	}

	return strings.Join(parts, "\n")
}
