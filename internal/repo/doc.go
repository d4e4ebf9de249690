// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repo owns the session collection and the active-session
// pointer. Every mutation goes through the Repository and is mirrored
// to the persistent store before the call returns, so the process can
// die at any point without losing state.
//
// # Key Types
//
//   - Repository: the mutation surface for sessions and transcripts
//   - ErrSessionNotFound: sentinel for operations on unknown IDs
//
// # Usage
//
//	r := repo.NewRepository(st)
//	r.SetCatalog(models)
//	sess, _ := r.CreateSession("gemma:7b")
//	r.AppendMessage(sess.ID, model.NewUserMessage("hello"))
//
// Callers may read the sessions the accessors return but must never
// mutate them directly; transcript changes go through AppendMessage,
// MutateLastMessage and ReplaceLastMessage so persistence and the
// title rules stay intact.
package repo
