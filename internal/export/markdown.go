// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/opchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a session transcript as a Markdown
// document: each message is a heading with the capitalized role name
// followed by its content, messages separated by a horizontal rule.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export converts a session to Markdown.
func (e *MarkdownExporter) Export(sess *model.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(sess.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	parts := make([]string, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", msg.Role.DisplayName(), msg.DisplayContent()))
	}

	return []byte(strings.Join(parts, "\n\n---\n\n")), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
