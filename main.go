// opchat TUI - A terminal interface for assistant chat with streaming replies.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opchat-tui/internal/config"
	"github.com/jeranaias/opchat-tui/internal/engine"
	"github.com/jeranaias/opchat-tui/internal/provider"
	"github.com/jeranaias/opchat-tui/internal/provider/mock"
	"github.com/jeranaias/opchat-tui/internal/provider/ollama"
	"github.com/jeranaias/opchat-tui/internal/repo"
	"github.com/jeranaias/opchat-tui/internal/store"
	"github.com/jeranaias/opchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("opchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "opchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not brick the app.
		fmt.Fprintf(os.Stderr, "opchat: config: %v (using defaults)\n", err)
		cfg = config.Default()
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer st.Close()

	sessions := repo.NewRepository(st)
	prov := buildProvider(cfg)
	eng := engine.New(sessions, prov)

	program := tea.NewProgram(
		chat.New(sessions, eng, cfg),
		tea.WithAltScreen(),
	)

	// Engine events are produced on stream goroutines; Program.Send is the
	// only safe way into the Update loop.
	eng.SetListener(func(ev engine.Event) {
		program.Send(chat.EngineEventMsg{Event: ev})
	})

	// Fetch the model catalog without blocking startup. An unreachable
	// provider leaves the catalog empty; no session is auto-created until
	// a catalog exists.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := prov.ListModels(ctx)
		if err == nil && len(models) > 0 {
			if catErr := sessions.SetCatalog(models); catErr != nil {
				fmt.Fprintf(os.Stderr, "opchat: persisting catalog: %v\n", catErr)
			}
		}
		program.Send(chat.ModelsLoadedMsg{Models: models, Err: err})
	}()

	// Hot-reload the config file while the app runs.
	watcher, err := config.NewWatcher(func(next *config.Config) {
		program.Send(chat.ConfigReloadedMsg{Config: next})
	})
	if err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}

// openStore builds the persistence backend selected in the config.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		path, err := cfg.ResolveDatabasePath()
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(path)
	default:
		dir, err := cfg.StateDir()
		if err != nil {
			return nil, err
		}
		return store.NewFileStore(dir)
	}
}

// buildProvider builds the completion backend selected in the config.
func buildProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider.Backend {
	case "mock":
		return mock.New()
	default:
		return ollama.NewClientWithConfig(&ollama.Config{
			BaseURL: cfg.Provider.OllamaURL,
			Timeout: time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
		})
	}
}

func printUsage() {
	fmt.Println(`opchat - terminal chat with streaming assistant replies

Usage:
  opchat            start the chat interface
  opchat version    print version information
  opchat help       show this help

Configuration is read from ~/.opchat/config.toml (or config.json) and
can be overridden with OPCHAT_* environment variables.`)
}
