// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mock

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/opchat-tui/internal/model"
)

func collect(t *testing.T, p *Provider, prompt string) string {
	t.Helper()

	history := []*model.Message{model.NewUserMessage(prompt)}
	ch, err := p.StreamCompletion(context.Background(), history, "gemma:7b")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}

	var sb strings.Builder
	for frag := range ch {
		if frag.Err != nil {
			t.Fatalf("fragment error: %v", frag.Err)
		}
		sb.WriteString(frag.Text)
	}
	return sb.String()
}

func TestListModels(t *testing.T) {
	p := NewInstant()
	names, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(names) != 5 {
		t.Fatalf("got %d models, want 5", len(names))
	}
	if names[0] != "gemma:7b" {
		t.Errorf("names[0] = %q, want gemma:7b", names[0])
	}
}

func TestStreamCompletion_KeywordMatch(t *testing.T) {
	p := NewInstant()

	tests := []struct {
		prompt string
		want   string
	}{
		{"Hello there", "Greetings, Operator."},
		{"write me a python script", "Here is a Python script"},
		{"build a website", "responsive HTML page"},
		{"what is the weather", "I'm processing your request."},
	}

	for _, tc := range tests {
		got := collect(t, p, tc.prompt)
		if !strings.Contains(got, tc.want) {
			t.Errorf("prompt %q: reply does not contain %q\ngot: %q", tc.prompt, tc.want, got)
		}
	}
}

func TestStreamCompletion_ReassemblesExactly(t *testing.T) {
	p := NewInstant()
	got := collect(t, p, "hello")

	want := "Greetings, Operator. I am online and ready for instructions. How can I assist you in this mission?"
	if got != want {
		t.Errorf("reassembled = %q, want %q", got, want)
	}
}

func TestStreamCompletion_PreservesCodeFences(t *testing.T) {
	p := NewInstant()
	got := collect(t, p, "show me python code")

	if !strings.Contains(got, "```python\n") {
		t.Error("reply lost its code fence")
	}
	if !strings.Contains(got, "httpd.serve_forever()") {
		t.Error("reply lost code body content")
	}
}

func TestStreamCompletion_Cancel(t *testing.T) {
	p := New() // real delays so cancelation lands mid-stream

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.StreamCompletion(ctx, []*model.Message{model.NewUserMessage("hello")}, "gemma:7b")
	if err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}

	<-ch // first fragment
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after cancel")
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []string{
		"one two three",
		"  leading and trailing  ",
		"line\none\n\nline two",
		"",
		"single",
	}

	for _, in := range tests {
		parts := splitWords(in)
		if got := strings.Join(parts, ""); got != in {
			t.Errorf("splitWords(%q) does not reassemble: %q", in, got)
		}
	}
}
