// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"

	"github.com/jeranaias/opchat-tui/internal/model"
)

// =============================================================================
// FRAGMENT
// =============================================================================

// Fragment is one unit of streamed completion output.
//
// Exactly one terminal fragment arrives per stream: either Done is set
// (normal completion) or Err is set (the stream failed partway). Text
// may be empty on the terminal fragment.
type Fragment struct {
	// Text is the next piece of assistant output.
	Text string

	// Done marks the end of a successful stream.
	Done bool

	// Err, if non-nil, terminates the stream with a failure.
	Err error
}

// =============================================================================
// PROVIDER CONTRACT
// =============================================================================

// Provider produces completions for a conversation transcript.
//
// Implementations must be safe for concurrent use; the update engine
// runs one stream per session and sessions stream independently.
type Provider interface {
	// ListModels returns the names of the models this provider can
	// serve, in display order.
	ListModels(ctx context.Context) ([]string, error)

	// StreamCompletion starts a completion for the given transcript
	// and model. Work does not begin until the call; the returned
	// channel delivers fragments in order and is closed after the
	// terminal fragment. Canceling ctx stops production promptly.
	StreamCompletion(ctx context.Context, history []*model.Message, modelName string) (<-chan Fragment, error)
}

// =============================================================================
// PROVIDER ERRORS
// =============================================================================

// ProviderError represents a provider-level failure.
// It implements the error interface and can be compared using errors.Is.
type ProviderError struct {
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for comparing provider errors.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ErrUnavailable indicates the backing service cannot be reached.
// Use errors.Is(err, ErrUnavailable) to check for this error.
var ErrUnavailable = &ProviderError{Message: "completion provider unavailable"}
