// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestStreamingBuffer_BatchThreshold(t *testing.T) {
	sb := NewStreamingBuffer(5, 30)

	// Below the batch size, right after a render, nothing is due.
	sb.MarkRendered()
	for i := 0; i < 4; i++ {
		sb.Note()
	}
	if sb.ShouldRender() {
		t.Error("render due before batch threshold")
	}

	sb.Note()
	if !sb.ShouldRender() {
		t.Error("render not due at batch threshold")
	}
}

func TestStreamingBuffer_TimeThreshold(t *testing.T) {
	sb := NewStreamingBuffer(1000, 60) // ~16ms interval
	sb.MarkRendered()
	sb.Note()

	if sb.ShouldRender() {
		t.Error("render due immediately after a render")
	}

	time.Sleep(25 * time.Millisecond)
	if !sb.ShouldRender() {
		t.Error("render not due after the flush interval elapsed")
	}
}

func TestStreamingBuffer_EmptyNeverRenders(t *testing.T) {
	sb := NewStreamingBuffer(1, 30)
	time.Sleep(40 * time.Millisecond)
	if sb.ShouldRender() {
		t.Error("render due with no pending fragments")
	}
}

func TestStreamingBuffer_MarkRendered(t *testing.T) {
	sb := NewStreamingBuffer(3, 30)
	for i := 0; i < 3; i++ {
		sb.Note()
	}
	if !sb.ShouldRender() {
		t.Fatal("render not due at batch threshold")
	}

	sb.MarkRendered()
	if sb.Pending() != 0 {
		t.Errorf("Pending() = %d after MarkRendered, want 0", sb.Pending())
	}
	if sb.ShouldRender() {
		t.Error("render due right after MarkRendered")
	}
}

func TestStreamingBuffer_Reset(t *testing.T) {
	sb := NewStreamingBuffer(2, 30)
	sb.Note()
	sb.Note()
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("Pending() = %d after Reset, want 0", sb.Pending())
	}
}

func TestNewStreamingBuffer_ClampsConfig(t *testing.T) {
	tests := []struct {
		name         string
		batch, fps   int
		wantInterval time.Duration
	}{
		{"defaults for zero", 0, 0, 33 * time.Millisecond},
		{"defaults for excessive fps", 15, 500, 33 * time.Millisecond},
		{"honors valid fps", 15, 10, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewStreamingBuffer(tt.batch, tt.fps)
			if got := sb.Interval(); got != tt.wantInterval {
				t.Errorf("Interval() = %v, want %v", got, tt.wantInterval)
			}
		})
	}
}
