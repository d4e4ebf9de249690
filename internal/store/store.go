// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/opchat-tui/internal/util"
)

// =============================================================================
// STORE CONTRACT
// =============================================================================

// Well-known keys. All session state lives under these two entries.
const (
	// KeySessions holds the full ordered session collection.
	KeySessions = "sessions"

	// KeyActiveSession holds the ID of the currently selected session.
	KeyActiveSession = "active_session"
)

// Store is a minimal key-value persistence contract.
//
// Get reports found=false for a missing key; an error means the backend
// itself failed (I/O, database), not that the key is absent.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// =============================================================================
// STORE ERRORS
// =============================================================================

// StoreError represents a persistence-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists each key as a JSON file in a base directory.
// Writes go through an atomic rename so a crash mid-write leaves the
// previous value intact.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewFileStore creates a file-backed store rooted at baseDir,
// creating the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes value under key, replacing any previous value atomically.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return util.AtomicWriteFile(s.filePath(key), value, 0644)
}

// Delete removes the value stored under key. Deleting a missing key
// is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close releases the store. File stores hold no open handles.
func (s *FileStore) Close() error {
	return nil
}

// filePath maps a key to its on-disk location. Keys are internal
// constants, but path separators are stripped anyway so a bad key
// cannot escape the base directory.
func (s *FileStore) filePath(key string) string {
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	key = strings.ReplaceAll(key, "/", "_")
	return filepath.Join(s.baseDir, key+".json")
}
