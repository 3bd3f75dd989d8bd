// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns user input into server submissions with
// optimistic local echo.
//
// The pipeline owns the active transcript: the message sequence the
// user is looking at right now. A submission appends the user's turn
// immediately, picks one of three transports based on what was
// provided (text, files, or both), and appends the server's reply —
// or a fixed placeholder on failure. Optimistic user messages are
// never rolled back: on failure the transcript keeps the user's turn
// followed by the failure placeholder, exactly in submission order.
//
// One submission may be in flight at a time. A second Submit while
// busy is rejected with ErrBusy rather than queued; the caller retries
// after the first outcome lands.
//
// # Key Types
//
//   - Pipeline: the dispatcher; one per UI surface
//   - Phase: lifecycle of a submission attempt
//   - Outcome: terminal phase plus the reply, if any
//
// # Usage
//
//	p := dispatch.NewPipeline(client, sess, sync)
//	out, err := p.Submit(ctx, "hello", nil)
//	if errors.Is(err, dispatch.ErrBusy) {
//	    // previous submission still in flight
//	}
package dispatch
