// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the completion stream contract.
//
// A Provider names the models it can serve and turns a conversation
// transcript into an ordered stream of text fragments. Two
// implementations ship with opchat: provider/ollama talks to a local
// Ollama server, and provider/mock serves canned replies for demos
// and tests.
//
// # Key Types
//
//   - Provider: ListModels + StreamCompletion
//   - Fragment: one unit of streamed output (text, terminal error, or
//     end-of-stream marker)
//
// # Usage
//
//	ch, err := p.StreamCompletion(ctx, history, "gemma:7b")
//	if err != nil { ... }
//	for frag := range ch {
//	    if frag.Err != nil { ... }
//	    append(frag.Text)
//	}
//
// The channel is closed after the final fragment. Canceling the
// context stops production promptly; the consumer drains whatever
// was already in flight.
package provider
