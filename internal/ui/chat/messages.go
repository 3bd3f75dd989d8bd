// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - async result messages and the tea.Cmd closures that
// produce them. All network work happens here, off the update loop.

package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/dispatch"
	"github.com/jeranaias/askme-tui/internal/session"
)

// submitDoneMsg reports a finished submission.
type submitDoneMsg struct {
	outcome dispatch.Outcome
}

// submitBusyMsg reports a submission rejected by the in-flight guard.
type submitBusyMsg struct{}

// authDoneMsg reports a finished login or register attempt.
type authDoneMsg struct {
	result session.Result
}

// chatsLoadedMsg reports a refreshed chat collection.
type chatsLoadedMsg struct {
	err error
}

// switchedMsg reports a completed conversation switch.
type switchedMsg struct {
	chat api.Chat
	err  error
}

// submitCmd dispatches one turn through the pipeline.
func (m Model) submitCmd(prompt string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.opts.Pipeline.Submit(context.Background(), prompt, nil)
		if errors.Is(err, dispatch.ErrBusy) {
			return submitBusyMsg{}
		}
		return submitDoneMsg{outcome: out}
	}
}

// loginCmd exchanges the form credentials for a session.
func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{result: m.opts.Session.Login(context.Background(), email, password)}
	}
}

// registerCmd creates an account with the form credentials.
func (m Model) registerCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg{result: m.opts.Session.Register(context.Background(), name, email, password)}
	}
}

// loadChatsCmd refreshes the conversation collection.
func (m Model) loadChatsCmd() tea.Cmd {
	return func() tea.Msg {
		return chatsLoadedMsg{err: m.opts.Chats.Refresh(context.Background())}
	}
}

// newChatCmd creates a conversation and selects it.
func (m Model) newChatCmd(name string) tea.Cmd {
	return func() tea.Msg {
		chat, err := m.opts.Chats.Create(context.Background(), name)
		if err != nil {
			return switchedMsg{err: err}
		}
		return switchedMsg{chat: *chat}
	}
}

// switchChatCmd selects another conversation and fetches its messages.
func (m Model) switchChatCmd(id string) tea.Cmd {
	return func() tea.Msg {
		chat, err := m.opts.Chats.RefreshChat(context.Background(), id)
		if err != nil {
			return switchedMsg{err: err}
		}
		m.opts.Chats.Select(id)
		return switchedMsg{chat: *chat}
	}
}
