// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export turns sessions into downloadable documents.
// Exporters are pure transforms over a session; WriteToFile handles
// filename derivation and disk I/O.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jeranaias/opchat-tui/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for session exporters.
type Exporter interface {
	// Export converts a session to the target format.
	Export(sess *model.Session) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteToFile exports a session into outputDir. The filename is the
// session title with whitespace runs replaced by underscores, plus the
// exporter's extension. Returns the output path.
func WriteToFile(sess *model.Session, exporter Exporter, outputDir string) (string, error) {
	content, err := exporter.Export(sess)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, Filename(sess.Title)+exporter.FileExtension())
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// Filename derives a safe filename stem from a session title:
// whitespace becomes underscores and path-hostile characters become
// dashes.
func Filename(title string) string {
	var sb strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r < 32 || r == 127:
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "session"
	}
	return sb.String()
}
