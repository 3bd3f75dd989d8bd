// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askme-tui/internal/chats"
	"github.com/jeranaias/askme-tui/internal/config"
	"github.com/jeranaias/askme-tui/internal/dispatch"
	"github.com/jeranaias/askme-tui/internal/session"
	"github.com/jeranaias/askme-tui/internal/ui/styles"
)

// screen identifies which surface is active.
type screen int

const (
	screenLogin screen = iota
	screenChat
)

// Login form field order.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// Options are the dependencies for the TUI. All are required.
type Options struct {
	Config   *config.Config
	Session  *session.Manager
	Chats    *chats.Synchronizer
	Pipeline *dispatch.Pipeline
}

// Model is the Bubble Tea model for the askme TUI.
type Model struct {
	opts   Options
	screen screen

	width  int
	height int
	ready  bool

	// Login form state. registering switches the form between login
	// (email+password) and register (name+email+password).
	registering bool
	nameInput   textinput.Model
	emailInput  textinput.Model
	passInput   textinput.Model
	focus       int
	formErr     string

	// Chat screen state.
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	waiting  bool
	status   string
}

// New creates the TUI model. The active screen follows the session:
// an already-verified token skips the login form entirely.
func New(opts Options) Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 200

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'
	pass.CharLimit = 200

	input := textinput.New()
	input.Placeholder = "Ask anything... (/help for commands)"
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	m := Model{
		opts:       opts,
		screen:     screenLogin,
		nameInput:  name,
		emailInput: email,
		passInput:  pass,
		focus:      fieldEmail,
		input:      input,
		spinner:    sp,
	}

	if opts.Session.IsAuthenticated() {
		m.screen = screenChat
		m.input.Focus()
	} else {
		m.emailInput.Focus()
	}
	return m
}

// Init starts cursor blinking and pulls the chat list for a session
// restored from a stored token.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.screen == screenChat {
		cmds = append(cmds, m.loadChatsCmd())
	}
	return tea.Batch(cmds...)
}

// enterChat switches to the conversation screen after authentication.
func (m *Model) enterChat() tea.Cmd {
	m.screen = screenChat
	m.formErr = ""
	m.passInput.SetValue("")
	m.input.Focus()
	return m.loadChatsCmd()
}

// enterLogin returns to the login form after logout.
func (m *Model) enterLogin() {
	m.screen = screenLogin
	m.registering = false
	m.focus = fieldEmail
	m.emailInput.Focus()
	m.nameInput.Blur()
	m.passInput.Blur()
	m.passInput.SetValue("")
	m.opts.Pipeline.Clear()
}
