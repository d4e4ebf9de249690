// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/opchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete opchat configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version" json:"version"`

	// DefaultModel is the preferred model for new sessions. When it is
	// not in the provider's catalog the catalog's first entry is used.
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Provider configuration
	Provider ProviderConfig `toml:"provider" json:"provider"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Export configuration
	Export ExportConfig `toml:"export" json:"export"`
}

// ProviderConfig selects and configures the completion backend.
type ProviderConfig struct {
	// Backend is "ollama" or "mock".
	Backend string `toml:"backend" json:"backend"`
	// OllamaURL is the URL of the Ollama server.
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// Dir is the state directory for the file backend
	// (default: ~/.opchat/state).
	Dir string `toml:"dir" json:"dir"`
	// DatabasePath is the SQLite file for the sqlite backend
	// (default: ~/.opchat/opchat.db).
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// SidebarWidth is the session list width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
	// StreamFPS caps redraws during streaming.
	StreamFPS int `toml:"stream_fps" json:"stream_fps"`
	// SyntaxStyle is the chroma style for code blocks.
	SyntaxStyle string `toml:"syntax_style" json:"syntax_style"`
}

// ExportConfig contains export settings.
type ExportConfig struct {
	// Dir is where exported transcripts land (default: cwd).
	Dir string `toml:"dir" json:"dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version:      "1",
		DefaultModel: "",
		Provider: ProviderConfig{
			Backend:     "ollama",
			OllamaURL:   "http://127.0.0.1:11434",
			TimeoutSecs: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		UI: UIConfig{
			Theme:        "dark",
			SidebarWidth: 30,
			StreamFPS:    30,
			SyntaxStyle:  "monokai",
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// fillDefaults replaces zero values with defaults after a file load.
func fillDefaults(cfg *Config) {
	def := Default()

	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Provider.Backend == "" {
		cfg.Provider.Backend = def.Provider.Backend
	}
	if cfg.Provider.OllamaURL == "" {
		cfg.Provider.OllamaURL = def.Provider.OllamaURL
	}
	if cfg.Provider.TimeoutSecs <= 0 {
		cfg.Provider.TimeoutSecs = def.Provider.TimeoutSecs
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = def.Storage.Backend
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.UI.SidebarWidth <= 0 {
		cfg.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if cfg.UI.StreamFPS <= 0 || cfg.UI.StreamFPS > 60 {
		cfg.UI.StreamFPS = def.UI.StreamFPS
	}
	if cfg.UI.SyntaxStyle == "" {
		cfg.UI.SyntaxStyle = def.UI.SyntaxStyle
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = def.Export.Dir
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the opchat configuration directory (~/.opchat).
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".opchat"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// StateDir resolves the state directory for the file store.
func (c *Config) StateDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// ResolveDatabasePath resolves the SQLite database path.
func (c *Config) ResolveDatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "opchat.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the config files, applying defaults
// and environment overrides. TOML wins over JSON when both exist.
// A missing file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, err
			}
			fillDefaults(cfg)
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, err
			}
			fillDefaults(cfg)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON config: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file; the format is
// picked by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values the app cannot run with.
func (c *Config) Validate() error {
	switch c.Provider.Backend {
	case "ollama", "mock":
	default:
		return fmt.Errorf("invalid provider backend: %q (want \"ollama\" or \"mock\")", c.Provider.Backend)
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %q (want \"file\" or \"sqlite\")", c.Storage.Backend)
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("invalid theme: %q (want \"dark\" or \"light\")", c.UI.Theme)
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies OPCHAT_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if backend := os.Getenv("OPCHAT_PROVIDER"); backend != "" {
		c.Provider.Backend = backend
	}
	if url := os.Getenv("OPCHAT_OLLAMA_URL"); url != "" {
		c.Provider.OllamaURL = url
	}
	if model := os.Getenv("OPCHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if backend := os.Getenv("OPCHAT_STORE"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("OPCHAT_STATE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if theme := os.Getenv("OPCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if fps := os.Getenv("OPCHAT_STREAM_FPS"); fps != "" {
		if n, err := strconv.Atoi(fps); err == nil && n > 0 && n <= 60 {
			c.UI.StreamFPS = n
		}
	}
}
