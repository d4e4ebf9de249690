// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"encoding/json"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// streamReader parses Ollama's newline-delimited JSON chat stream.
type streamReader struct {
	reader *bufio.Reader
}

func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{reader: bufio.NewReader(r)}
}

// streamLine is one line of the NDJSON chat stream.
type streamLine struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// next reads one line and returns its content. done=true signals the
// terminal line; a clean EOF is also treated as the end of the stream.
func (s *streamReader) next() (text string, done bool, err error) {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(line) == 0 {
				return "", true, nil
			}
			if err != io.EOF {
				return "", false, err
			}
			// Fall through and process the final unterminated line.
		}

		if len(line) == 0 {
			continue
		}

		var parsed streamLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			// Skip malformed lines
			continue
		}

		return parsed.Message.Content, parsed.Done, nil
	}
}
