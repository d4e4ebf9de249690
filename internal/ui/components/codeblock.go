// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the opchat TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/opchat-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting,
// line numbers, and a language badge.
type CodeBlock struct {
	Language    string
	Code        string
	MaxWidth    int
	SyntaxStyle string
}

// NewCodeBlock creates a code block with the default width and syntax style.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language:    language,
		Code:        code,
		MaxWidth:    80,
		SyntaxStyle: "monokai",
	}
}

// Render renders the code block with styling.
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.TrimRight(c.Code, "\n")

	language := c.Language
	if language == "" || language == "plaintext" {
		language = detectLanguage(code)
	}

	highlighted := highlightCode(code, language, c.SyntaxStyle)
	lines := strings.Split(highlighted, "\n")

	var renderedLines []string
	for i, line := range lines {
		lineNum := theme.CodeLineNum.Render(fmt.Sprintf("%d", i+1))
		renderedLines = append(renderedLines, lineNum+line)
	}
	codeContent := strings.Join(renderedLines, "\n")

	var header string
	if c.Language != "" {
		header = theme.CodeLangBadge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + codeContent)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// highlightCode applies syntax highlighting to code using the chroma library.
// This provides proper ANSI-safe syntax highlighting for terminal output.
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// detectLanguage attempts to detect the programming language of the given code.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
