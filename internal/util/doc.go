// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the opchat TUI.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file replacement with fsync
//   - TruncateRunes: rune-aware truncation with ellipsis
//   - TruncateWidth: display-width-aware truncation (CJK safe)
package util
