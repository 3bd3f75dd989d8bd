// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chats maintains the client's view of the conversation
// collection.
//
// The server owns the truth; this package holds a cache of the chat
// list plus the current selection, and reconciles it after optimistic
// writes. Two writers touch a chat's message sequence: the dispatch
// pipeline (optimistic, via ApplyLocal) and the synchronizer itself
// (authoritative, via RefreshChat). Each cached chat carries a local
// revision counter so an authoritative refresh supersedes pending
// optimistic state — both writers converge to server truth on the next
// fetch.
//
// Selection is held by id, not by pointer: a selected id that is not
// (yet) present in the collection is transiently stale and resolves on
// the next refresh.
package chats
