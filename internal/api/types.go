// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User is the authenticated account as reported by the server.
// It is never derived locally; only auth and refresh responses mutate it.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
}

// Message is a single chat turn. Content may be empty for file-only
// turns; Files carries the attached filenames in submission order.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Files     []string  `json:"files,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is one conversation. The server copy is authoritative; the
// client's copy may be briefly stale between an optimistic write and
// the next refresh.
type Chat struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials is the token/user pair issued by login, register and
// OAuth login. The pair is applied atomically by the session layer.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Attachment is an opaque file blob to upload. The client never reads
// or transforms the content; it only transports it.
type Attachment struct {
	Name string
	Data []byte
}

// AskResult is the outcome of a successful prompt submission.
// ChatID is set when the server bound (or confirmed) a conversation id.
type AskResult struct {
	Response string `json:"response"`
	ChatID   string `json:"chatId"`
}
