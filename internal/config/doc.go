// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for opchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ProviderConfig: Completion backend selection and Ollama endpoint
//   - StorageConfig: Persistence backend selection
//   - UIConfig: Presentation settings
//   - Watcher: fsnotify-based hot reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPCHAT_*)
//   - ~/.opchat/config.toml
//   - ~/.opchat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	backend := cfg.Provider.Backend
//	dataDir := cfg.Storage.Dir
package config
