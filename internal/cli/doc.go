// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the askme command-line surface.
//
// The package owns argument parsing, terminal capability detection and
// the non-TUI commands: credential entry (login, register, logout),
// session status, chat collection management, one-shot asks and the
// interactive REPL. The full-screen TUI lives in internal/ui; main.go
// routes between the two.
//
// Output goes through shared lipgloss styles that degrade to plain
// text for piped output and respect NO_COLOR.
//
// # Key Types
//
//   - App: the wired command handlers; one per process
//   - ArgParser: unified flag/positional parsing for all commands
//
// # Usage
//
//	app := cli.NewApp(cfg, client, sess, sync, pipe, store)
//	os.Exit(app.Run(os.Args[1:]))
package cli
