// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the client's durable state.
//
// Exactly two values survive a restart: the bearer token and the theme
// preference. Both are plain string files under ~/.askme/ with no schema
// or versioning. Conversations are never stored locally; the server is
// the source of truth and the client refetches on demand.
//
// # Usage
//
// Create a store and read the persisted token:
//
//	store, err := storage.NewStore()
//	token := store.Token() // "" when logged out
//
// Writes are atomic (temp file + fsync + rename), so a crash mid-write
// never leaves a corrupt credential file.
package storage
