// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment splits free-form assistant text into display
// segments: plain text and fenced code blocks. The splitter is a pure
// function over its input and makes no assumption about whether the
// text is still accumulating, so an unterminated fence mid-stream
// renders as plain text until its closing fence arrives.
package segment

import "strings"

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// Kind discriminates segment content.
type Kind int

const (
	KindText Kind = iota
	KindCode
)

// Segment is one run of renderable content.
type Segment struct {
	Kind     Kind
	Language string // set for KindCode; "plaintext" when the fence named none
	Body     string
}

// =============================================================================
// SPLITTER
// =============================================================================

const fence = "```"

// Split cuts text into alternating text and code segments. Only a
// complete fence pair with a language line (for example "```python\n")
// counts as code; anything else, including a fence that has not been
// closed yet, stays plain text. Segments that are blank after trimming
// are dropped.
func Split(text string) []Segment {
	var segs []Segment

	appendText := func(s string) {
		if strings.TrimSpace(s) != "" {
			segs = append(segs, Segment{Kind: KindText, Body: s})
		}
	}

	rest := text
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			appendText(rest)
			break
		}

		closing := strings.Index(rest[open+len(fence):], fence)
		if closing < 0 {
			// Unterminated fence: the whole remainder is plain text.
			appendText(rest)
			break
		}

		end := open + len(fence) + closing + len(fence)
		chunk := rest[open:end]

		appendText(rest[:open])

		if lang, body, ok := parseFence(chunk); ok {
			if strings.TrimSpace(body) != "" {
				segs = append(segs, Segment{Kind: KindCode, Language: lang, Body: body})
			}
		} else {
			appendText(chunk)
		}

		rest = rest[end:]
	}

	return segs
}

// parseFence dissects one complete fenced chunk. The opening line must
// be the fence followed by an optional language word and a newline.
func parseFence(chunk string) (lang, body string, ok bool) {
	inner := strings.TrimPrefix(chunk, fence)
	inner = strings.TrimSuffix(inner, fence)

	nl := strings.Index(inner, "\n")
	if nl < 0 {
		return "", "", false
	}

	lang = inner[:nl]
	if !isWord(lang) {
		return "", "", false
	}
	if lang == "" {
		lang = "plaintext"
	}

	return lang, inner[nl+1:], true
}

// isWord reports whether s contains only word characters.
func isWord(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
