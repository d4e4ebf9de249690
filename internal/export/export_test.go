// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/opchat-tui/internal/model"
)

func testSession() *model.Session {
	sess := model.NewSession("gemma:7b")
	sess.AppendMessage(model.NewUserMessage("Deploy the probes"))
	sess.AppendMessage(model.NewMessage(model.RoleAssistant, "Probes deployed.\n\n```python\nlaunch()\n```"))
	return sess
}

// =============================================================================
// MARKDOWN TESTS
// =============================================================================

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter().Export(testSession())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	got := string(out)
	want := "## User\n\nDeploy the probes\n\n---\n\n## Assistant\n\nProbes deployed.\n\n```python\nlaunch()\n```"
	if got != want {
		t.Errorf("markdown output mismatch\ngot:  %q\nwant: %q", got, want)
	}
}

func TestMarkdownExport_EmptySession(t *testing.T) {
	sess := model.NewSession("gemma:7b")
	if _, err := NewMarkdownExporter().Export(sess); err == nil {
		t.Error("expected error for empty session")
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestJSONExport_RoundTrip(t *testing.T) {
	sess := testSession()
	out, err := NewJSONExporter().Export(sess)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded model.Session
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != sess.ID || decoded.Title != sess.Title {
		t.Errorf("decoded identity mismatch: %+v", decoded)
	}
	if len(decoded.Messages) != 2 {
		t.Errorf("decoded %d messages, want 2", len(decoded.Messages))
	}
}

// =============================================================================
// FILE OUTPUT TESTS
// =============================================================================

func TestWriteToFile(t *testing.T) {
	dir := t.TempDir()
	sess := testSession()
	sess.Title = "Mission Report Alpha"

	path, err := WriteToFile(sess, NewMarkdownExporter(), dir)
	if err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	if !strings.HasSuffix(path, "Mission_Report_Alpha.md") {
		t.Errorf("path = %q, want title with underscores", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"New Mission", "New_Mission"},
		{"a/b:c", "a-b-c"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"", "session"},
	}

	for _, tc := range tests {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
