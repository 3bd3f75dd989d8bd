// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command routing for the askme CLI.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/chats"
	"github.com/jeranaias/askme-tui/internal/config"
	"github.com/jeranaias/askme-tui/internal/dispatch"
	"github.com/jeranaias/askme-tui/internal/session"
	"github.com/jeranaias/askme-tui/internal/storage"
)

// Version is the askme release version, overridden at build time with
// -ldflags "-X .../internal/cli.Version=...".
var Version = "0.2.0"

// App holds the wired command handlers.
// Construct with NewApp; all dependencies are injected explicitly.
type App struct {
	cfg      *config.Config
	client   *api.Client
	session  *session.Manager
	chats    *chats.Synchronizer
	pipeline *dispatch.Pipeline
	store    *storage.Store
}

// NewApp creates the CLI application.
func NewApp(cfg *config.Config, client *api.Client, sess *session.Manager,
	sync *chats.Synchronizer, pipe *dispatch.Pipeline, store *storage.Store) *App {
	return &App{
		cfg:      cfg,
		client:   client,
		session:  sess,
		chats:    sync,
		pipeline: pipe,
		store:    store,
	}
}

// Run executes one command and returns the process exit code.
// The "tui" command is not handled here; main.go intercepts it before
// routing because the TUI owns the terminal.
func (a *App) Run(ctx context.Context, command string, args *ArgParser) int {
	var err error
	switch command {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "register":
		err = a.cmdRegister(ctx, args)
	case "logout":
		err = a.cmdLogout()
	case "status":
		err = a.cmdStatus(ctx)
	case "chats":
		err = a.cmdChats(ctx, args)
	case "ask":
		err = a.cmdAsk(ctx, args)
	case "chat":
		err = a.cmdChat(ctx)
	case "version":
		fmt.Println("askme " + Version)
	case "help", "":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s unknown command %q\n", ErrorStyle.Render("[Error]"), command)
		printHelp()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return 1
	}
	return 0
}

// printHelp prints command usage.
func printHelp() {
	fmt.Println(TitleStyle.Render("askme - terminal client for the Ask Me chat service"))
	fmt.Println()
	fmt.Println("Usage: askme <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                 Log in with email and password (--google <token> for OAuth)")
	fmt.Println("  register              Create an account")
	fmt.Println("  logout                Log out and clear the stored token")
	fmt.Println("  status                Show session and server status")
	fmt.Println("  chats [list]          List conversations")
	fmt.Println("  chats new [name]      Create a conversation")
	fmt.Println("  chats delete <id>     Delete a conversation (--yes to skip confirm)")
	fmt.Println("  ask <prompt>          One-shot prompt (--file <path> to attach, repeatable)")
	fmt.Println("  chat                  Interactive REPL")
	fmt.Println("  tui                   Full-screen terminal UI")
	fmt.Println("  version               Print the version")
	fmt.Println("  help                  Show this help")
	fmt.Println()
	fmt.Println(DimStyle.Render("Server: " + config.Global().Server.URL))
}
