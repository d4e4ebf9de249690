// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements streaming optimization to provide smooth, flicker-free
// rendering during response streaming. Fragments land in the session
// repository as they arrive; the StreamingBuffer decides when the transcript
// is re-rendered from it, capping the frame rate to balance responsiveness
// with CPU efficiency.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches fragment arrivals for efficient rendering.
// A re-render is due either when:
// 1. The batch size threshold is reached (e.g., 15 fragments pending)
// 2. Enough time has passed since the last render (e.g., 33ms for 30fps)
//
// This prevents excessive rendering (>1000fps) which causes flicker and
// high CPU usage, while maintaining smooth visual updates.
//
// Thread-safety: All operations are protected by a mutex since fragment
// events arrive from engine goroutines while rendering happens in the main
// Bubble Tea loop.
type StreamingBuffer struct {
	mu         sync.Mutex
	pending    int
	lastRender time.Time

	batchSize  int           // Fragments per batch (default: 15)
	maxFPS     int           // Max frames per second (default: 30)
	minFlushMs time.Duration // Min time between renders (1000/maxFPS)
}

// NewStreamingBuffer creates a streaming buffer with the given settings.
// Out-of-range values fall back to 15 fragments per batch at 30fps.
func NewStreamingBuffer(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &StreamingBuffer{
		batchSize:  batchSize,
		maxFPS:     maxFPS,
		minFlushMs: time.Duration(1000/maxFPS) * time.Millisecond,
		lastRender: time.Now(),
	}
}

// Note records the arrival of one fragment.
func (sb *StreamingBuffer) Note() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending++
}

// ShouldRender reports whether a re-render is due.
// A render is due when fragments are pending and either the batch size
// or the time threshold has been reached.
func (sb *StreamingBuffer) ShouldRender() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.shouldRenderLocked()
}

func (sb *StreamingBuffer) shouldRenderLocked() bool {
	if sb.pending == 0 {
		return false
	}
	if sb.pending >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastRender) >= sb.minFlushMs
}

// MarkRendered clears pending fragments after the transcript is re-rendered.
func (sb *StreamingBuffer) MarkRendered() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending = 0
	sb.lastRender = time.Now()
}

// Pending returns the number of fragments waiting for a render.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.pending
}

// Reset clears the buffer without rendering.
// Use this when canceling a stream or switching sessions.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending = 0
	sb.lastRender = time.Now()
}

// Interval returns the minimum time between renders.
func (sb *StreamingBuffer) Interval() time.Duration {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.minFlushMs
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd creates a tea.Cmd that sends StreamTickMsg at the buffer's
// frame rate. This keeps the transcript advancing even when fragments arrive
// slower than the batch threshold.
func streamTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
