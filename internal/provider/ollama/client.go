// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama implements the completion provider against a local
// Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jeranaias/opchat-tui/internal/model"
	"github.com/jeranaias/opchat-tui/internal/provider"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage is a message in Ollama's chat format.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the body for POST /api/chat.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// listModelsResponse is the body of GET /api/tags.
type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// apiError is Ollama's error envelope.
type apiError struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://127.0.0.1:11434",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Ollama API and implements provider.Provider.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates an Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates an Ollama client with custom configuration.
func NewClientWithConfig(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Interface check.
var _ provider.Provider = (*Client)(nil)

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all available model names from Ollama.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// =============================================================================
// STREAMING COMPLETION
// =============================================================================

// StreamCompletion starts a streaming chat request and returns a
// channel of fragments. The channel is closed after the terminal
// fragment; errors are delivered as fragments with Err set.
func (c *Client) StreamCompletion(ctx context.Context, history []*model.Message, modelName string) (<-chan provider.Fragment, error) {
	if modelName == "" {
		return nil, ErrModelNotFound
	}

	messages := make([]wireMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, wireMessage{
			Role:    msg.Role.String(),
			Content: msg.DisplayContent(),
		})
	}

	body, err := json.Marshal(chatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	ch := make(chan provider.Fragment)

	go func() {
		defer close(ch)

		if err := c.chatStream(ctx, body, ch); err != nil {
			select {
			case ch <- provider.Fragment{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case ch <- provider.Fragment{Done: true}:
		case <-ctx.Done():
		}
	}()

	return ch, nil
}

// chatStream performs the HTTP request and forwards text fragments to
// ch until the server reports done.
func (c *Client) chatStream(ctx context.Context, body []byte, ch chan<- provider.Fragment) error {
	// Use a client without timeout for streaming (we handle timeout via context)
	// SECURITY: TLS not required - Ollama runs locally on localhost (127.0.0.1) over HTTP
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ctx.Err()
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrModelNotFound
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "stream request failed: " + resp.Status,
		}
	}

	reader := newStreamReader(resp.Body)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text, done, err := reader.next()
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "stream read failed", Cause: err}
		}
		if text != "" {
			select {
			case ch <- provider.Fragment{Text: text}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if done {
			return nil
		}
	}
}
