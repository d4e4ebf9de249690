// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides key-value persistence for session state.
//
// Two backends implement the Store interface: a JSON-file store with
// atomic writes (the default) and a SQLite store for installs that
// prefer a single database file.
//
// # Key Types
//
//   - Store: minimal key-value contract (Get, Set, Delete, Close)
//   - FileStore: one JSON file per key, crash-safe via atomic rename
//   - SQLiteStore: single-table kv schema on modernc.org/sqlite
//
// # Usage
//
//	st, err := store.NewFileStore(dir)
//	if err != nil { ... }
//	defer st.Close()
//
//	sessions := store.LoadSessions(st)   // corrupt or missing -> empty
//	store.SaveSessions(st, sessions)
//
// The typed helpers in state.go own the serialization format. A value
// that fails to decode is treated as absent, never as a fatal error,
// so a damaged state file degrades to a fresh start instead of a
// crash loop.
package store
