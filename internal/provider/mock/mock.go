// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mock implements a self-contained completion provider for
// demos and tests. It serves a fixed model catalog and streams canned
// replies word by word with small randomized delays, so the full
// streaming path can be exercised without a running backend.
package mock

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/provider"
)

// =============================================================================
// FIXTURES
// =============================================================================

// Models is the fixed catalog the mock provider reports.
var Models = []string{
	"gemma:7b",
	"llama3:8b-instruct-q8_0",
	"codellama:13b",
	"mistral:latest",
	"phi3:latest",
}

// cannedReply pairs trigger keywords with a full reply.
type cannedReply struct {
	keywords []string
	response string
}

var cannedReplies = []cannedReply{
	{
		keywords: []string{"hello", "hi", "hey"},
		response: "Greetings, Operator. I am online and ready for instructions. How can I assist you in this mission?",
	},
	{
		keywords: []string{"python", "code", "script"},
		response: "Of course. Here is a Python script to demonstrate a basic web server. This can be a useful starting point for many network operations.\n\n```python\nimport http.server\nimport socketserver\n\nPORT = 8000\n\nHandler = http.server.SimpleHTTPRequestHandler\n\nwith socketserver.TCPServer(('', PORT), Handler) as httpd:\n    print('serving at port', PORT)\n    httpd.serve_forever()\n```\n\nThis script utilizes Python's built-in libraries to create a simple HTTP server. It will serve files from the directory it is run in on port 8000. Let me know if you need it modified.",
	},
	{
		keywords: []string{"html", "website", "frontend"},
		response: "Certainly. Here is the boilerplate for a modern, responsive HTML page using a flexbox layout.\n\n```html\n<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <meta charset=\"UTF-8\">\n    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n    <title>Mission Control UI</title>\n    <style>\n        body { font-family: monospace; background: #0a0a0a; color: #00ff00; margin: 0; }\n        .container { display: flex; flex-direction: column; min-height: 100vh; }\n        .header, .footer { background: #1a1a1a; padding: 1rem; text-align: center; }\n        .main { flex: 1; padding: 1rem; }\n    </style>\n</head>\n<body>\n    <div class=\"container\">\n        <header class=\"header\"><h1>STATUS: ONLINE</h1></header>\n        <main class=\"main\"><p>Awaiting your command...</p></main>\n        <footer class=\"footer\"><p>&copy; 2024 Operator Command</p></footer>\n    </div>\n</body>\n</html>\n```\n\nThis provides a solid foundation for a web interface. You can expand upon the `.main` section with your components.",
	},
}

const defaultReply = "I'm processing your request. The connection to the local network seems stable. Please provide more specific instructions if you have a particular goal in mind. I can assist with code generation, data analysis, or strategic planning."

// =============================================================================
// PROVIDER
// =============================================================================

// Provider serves canned completions. The zero-ish value from New is
// ready to use and safe for concurrent streams.
type Provider struct {
	// CatalogDelay simulates the network round trip of a model list.
	CatalogDelay time.Duration

	// MinWordDelay and MaxWordDelay bound the randomized pause before
	// each streamed word. Zero values stream as fast as possible,
	// which is what tests want.
	MinWordDelay time.Duration
	MaxWordDelay time.Duration
}

// New creates a mock provider with interactive-feeling delays.
func New() *Provider {
	return &Provider{
		CatalogDelay: 500 * time.Millisecond,
		MinWordDelay: 20 * time.Millisecond,
		MaxWordDelay: 70 * time.Millisecond,
	}
}

// NewInstant creates a mock provider with no artificial delays.
func NewInstant() *Provider {
	return &Provider{}
}

// Interface check.
var _ provider.Provider = (*Provider)(nil)

// ListModels returns the fixed catalog.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	if p.CatalogDelay > 0 {
		select {
		case <-time.After(p.CatalogDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make([]string, len(Models))
	copy(out, Models)
	return out, nil
}

// StreamCompletion picks a reply keyed off the last user message and
// streams it word by word. Whitespace runs are delivered as their own
// fragments so the accumulated text reproduces the reply exactly.
func (p *Provider) StreamCompletion(ctx context.Context, history []*model.Message, modelName string) (<-chan provider.Fragment, error) {
	reply := pickReply(history)
	words := splitWords(reply)

	ch := make(chan provider.Fragment)

	go func() {
		defer close(ch)

		for _, word := range words {
			if err := p.pause(ctx); err != nil {
				return
			}
			select {
			case ch <- provider.Fragment{Text: word}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case ch <- provider.Fragment{Done: true}:
		case <-ctx.Done():
		}
	}()

	return ch, nil
}

// pause sleeps for a randomized per-word delay, or returns early when
// the context is canceled.
func (p *Provider) pause(ctx context.Context) error {
	if p.MaxWordDelay <= 0 {
		return ctx.Err()
	}
	spread := p.MaxWordDelay - p.MinWordDelay
	delay := p.MinWordDelay
	if spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pickReply matches the last user message against the canned replies.
func pickReply(history []*model.Message) string {
	var lastUser string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser {
			lastUser = strings.ToLower(history[i].DisplayContent())
			break
		}
	}

	for _, canned := range cannedReplies {
		for _, kw := range canned.keywords {
			if strings.Contains(lastUser, kw) {
				return canned.response
			}
		}
	}
	return defaultReply
}

// splitWords splits text into alternating word and whitespace runs so
// that joining the pieces reproduces the input byte for byte.
func splitWords(text string) []string {
	var (
		parts   []string
		start   int
		inSpace bool
	)
	for i, r := range text {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			parts = append(parts, text[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}
