// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen terminal UI for askme.

The package implements a Bubble Tea application with two screens: a
login/register form shown while the session is unauthenticated, and the
conversation screen with a scrollable transcript, an input line and a
status bar showing the credit balance.

Network work never runs on the update loop. Submissions, credential
exchanges and chat switches execute inside tea.Cmd closures and report
back as messages; the dispatch pipeline's single-slot guard keeps a
second Enter from double-submitting while one is in flight.

# Key Components

  - Model (model.go): all screen state, built from injected dependencies
  - Update loop (update.go): key handling and async result messages
  - View rendering (view.go): bubbles, transcript, status bar

# Usage

	model := chat.New(chat.Options{
		Config:   cfg,
		Session:  sess,
		Chats:    sync,
		Pipeline: pipe,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
