// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the askme client.
//
// It contains the atomic file-write primitive used for persisted client
// state (token, theme preference) and rune-aware string helpers used by
// the CLI and TUI when truncating chat previews for display.
package util
