// askme - a terminal client for the Ask Me chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// main.go is the composition root: it loads configuration, wires the
// API client, session manager, chat synchronizer and dispatch pipeline
// together, then routes to either the CLI commands or the full-screen
// TUI. No package below this file reaches for globals; everything is
// injected here.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/chats"
	"github.com/jeranaias/askme-tui/internal/cli"
	"github.com/jeranaias/askme-tui/internal/config"
	"github.com/jeranaias/askme-tui/internal/dispatch"
	"github.com/jeranaias/askme-tui/internal/session"
	"github.com/jeranaias/askme-tui/internal/storage"
	uichat "github.com/jeranaias/askme-tui/internal/ui/chat"
	"github.com/jeranaias/askme-tui/internal/ui/styles"
)

func main() {
	os.Exit(run())
}

func run() int {
	// =========================================================================
	// CONFIGURATION
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "askme: invalid configuration: %v\n", err)
		return 1
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "askme: invalid configuration: %v\n", err)
		return 1
	}
	config.SetGlobal(cfg)

	// =========================================================================
	// WIRING
	// =========================================================================

	store, err := storage.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "askme: cannot create state directory: %v\n", err)
		return 1
	}

	// Request/response logging goes to a file; stdout and stderr belong
	// to command output and the TUI.
	setupLogging(store.BaseDir)

	client := api.NewClient(cfg.Server.URL).
		WithTimeout(time.Duration(cfg.Server.TimeoutSeconds) * time.Second).
		WithRequestsPerSecond(cfg.Server.RequestsPerSecond)

	sess := session.NewManager(client, store)
	sync := chats.NewSynchronizer(client, sess)
	sess.SetClearedCallback(sync.Clear)
	pipe := dispatch.NewPipeline(client, sess, sync)

	ctx := context.Background()

	// Restore a previous session from the stored token. A rejected or
	// missing token just means starting logged out.
	if sess.Verify(ctx) {
		if err := sync.Refresh(ctx); err != nil {
			log.Printf("main: initial chat refresh failed: %v", err)
		}
	}

	// =========================================================================
	// ROUTING
	// =========================================================================

	command := ""
	rest := []string{}
	if len(os.Args) > 1 {
		command = os.Args[1]
		rest = os.Args[2:]
	}

	// Bare "askme" on a terminal opens the TUI, the same way the web
	// client opens straight into the chat surface.
	if command == "" && cli.IsTTY() {
		command = "tui"
	}

	if command == "tui" {
		return runTUI(cfg, store, sess, sync, pipe)
	}

	app := cli.NewApp(cfg, client, sess, sync, pipe, store)

	// The REPL is long-running; pick up config edits while it is open.
	if command == "chat" {
		if watcher, err := config.NewWatcher(nil); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	return app.Run(ctx, command, cli.NewArgParser(rest))
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, store *storage.Store,
	sess *session.Manager, sync *chats.Synchronizer, pipe *dispatch.Pipeline) int {

	theme := cfg.UI.Theme
	if stored := store.Theme(); stored != "" {
		theme = stored
	}
	styles.ApplyTheme(theme)

	watcher, err := config.NewWatcher(nil)
	if err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	model := uichat.New(uichat.Options{
		Config:   cfg,
		Session:  sess,
		Chats:    sync,
		Pipeline: pipe,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "askme: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging sends the standard logger to a file under the state
// directory. When that fails, logs are dropped rather than corrupting
// terminal output.
func setupLogging(baseDir string) {
	path := filepath.Join(baseDir, "askme.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
}
