// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the authentication state of the askme client.
//
// The manager is a small state machine over Unauthenticated, Verifying,
// Authenticated and Refreshing. It is the only writer of the bearer
// token and the user record, and it keeps one invariant at all times:
// token and user are either both set or both unset. Login, register and
// OAuth login apply their token/user pair atomically; a failed attempt
// leaves the previous session untouched.
//
// Verify is a one-shot startup gate, not a poller: if the persisted
// token does not verify, it is cleared and the client starts logged
// out. RefreshUser re-verifies purely to pull an updated credit
// balance and swallows failures.
package session
