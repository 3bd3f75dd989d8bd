// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Ask Me chat service.
//
// The service exposes a small JSON API: auth endpoints issuing a bearer
// token, CRUD endpoints for the chat collection, and three submission
// endpoints (plain prompt, file upload, prompt with files). This package
// is pure transport: it holds no conversation state and performs no
// retries. Higher layers decide what a failure means.
//
// # Key Types
//
//   - Client: the API client; safe for concurrent use
//   - User, Chat, Message: wire models
//   - AskResult: reply and chat binding returned by submissions
//   - APIError, ErrUnauthorized, ErrCreditsExhausted: error taxonomy
//
// # Errors
//
// Non-2xx responses are inspected for the credit-exhaustion business
// flag before anything else; a body carrying credits_exhausted=true maps
// to ErrCreditsExhausted regardless of status code. 401 maps to
// ErrUnauthorized. Everything else becomes *APIError. Use errors.Is/As.
package api
