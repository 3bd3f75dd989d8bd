// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - the Bubble Tea update loop.

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askme-tui/internal/dispatch"
)

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		return m.updateChat(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authDoneMsg:
		if !msg.result.Success {
			m.formErr = msg.result.Error
			return m, nil
		}
		return m, m.enterChat()

	case chatsLoadedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		// Resume the selected conversation when the transcript is
		// still empty (fresh start from a stored token).
		if chat, ok := m.opts.Chats.Selected(); ok && len(m.opts.Pipeline.Transcript()) == 0 {
			m.opts.Pipeline.SetTranscript(chat.Messages)
		}
		m.refreshViewport()
		return m, nil

	case switchedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.opts.Pipeline.SetTranscript(msg.chat.Messages)
		m.status = mutedStyle.Render("Switched to " + msg.chat.Name)
		m.refreshViewport()
		return m, nil

	case submitBusyMsg:
		m.status = warnStyle.Render("Still waiting on the previous message")
		return m, nil

	case submitDoneMsg:
		m.waiting = false
		switch msg.outcome.Phase {
		case dispatch.PhaseCreditsExhausted:
			m.status = warnStyle.Render("Out of credits")
		case dispatch.PhaseFailed:
			m.status = errorStyle.Render("Submission failed")
		default:
			m.status = ""
		}
		m.refreshViewport()
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleResize recomputes layout. The viewport takes everything that
// the header, input line and status bar do not.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := 4 // header + input + status
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 4
	m.refreshViewport()
	return m
}

// =============================================================================
// LOGIN SCREEN
// =============================================================================

// updateLogin handles keys on the login/register form.
func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.cycleFocus(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.cycleFocus(-1)
		return m, nil
	case tea.KeyEnter:
		return m.submitForm()
	}

	switch msg.String() {
	case "ctrl+r":
		m.registering = !m.registering
		m.formErr = ""
		if m.registering {
			m.focus = fieldName
		} else {
			m.focus = fieldEmail
		}
		m.applyFocus()
		return m, nil
	}

	return m.updateFocused(msg)
}

// cycleFocus moves focus through the visible form fields.
func (m *Model) cycleFocus(dir int) {
	first := fieldEmail
	if m.registering {
		first = fieldName
	}
	m.focus += dir
	if m.focus > fieldPassword {
		m.focus = first
	}
	if m.focus < first {
		m.focus = fieldPassword
	}
	m.applyFocus()
}

// applyFocus syncs the textinput focus states with m.focus.
func (m *Model) applyFocus() {
	m.nameInput.Blur()
	m.emailInput.Blur()
	m.passInput.Blur()
	switch m.focus {
	case fieldName:
		m.nameInput.Focus()
	case fieldEmail:
		m.emailInput.Focus()
	case fieldPassword:
		m.passInput.Focus()
	}
}

// submitForm validates and dispatches the credential exchange.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passInput.Value()

	if !strings.Contains(email, "@") || password == "" {
		m.formErr = "Enter a valid email and password"
		return m, nil
	}

	if m.registering {
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.formErr = "Enter your name"
			return m, nil
		}
		return m, m.registerCmd(name, email, password)
	}
	return m, m.loginCmd(email, password)
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

// updateChat handles keys on the conversation screen.
func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+n":
		return m, m.newChatCmd(defaultChatName)
	case "ctrl+l":
		m.opts.Session.Logout()
		m.enterLogin()
		return m, nil
	}

	return m.updateFocused(msg)
}

// defaultChatName mirrors the name the web client gives new chats.
const defaultChatName = "New Chat"

// submitInput dispatches the current input line.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	if strings.HasPrefix(text, "/") {
		return m.slashCommand(text)
	}

	m.waiting = true
	m.status = ""
	m.refreshViewportWithPending(text)
	return m, tea.Batch(m.submitCmd(text), m.spinner.Tick)
}

// slashCommand handles in-chat commands.
func (m Model) slashCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return m, nil
	}

	switch fields[0] {
	case "help":
		m.status = mutedStyle.Render("/new [name] · /next · /prev · ctrl+n new · ctrl+l logout · pgup/pgdn scroll")
		return m, nil
	case "new":
		name := strings.Join(fields[1:], " ")
		if name == "" {
			name = defaultChatName
		}
		return m, m.newChatCmd(name)
	case "next":
		return m.stepChat(1)
	case "prev":
		return m.stepChat(-1)
	case "logout":
		m.opts.Session.Logout()
		m.enterLogin()
		return m, nil
	default:
		m.status = warnStyle.Render("Unknown command " + text)
		return m, nil
	}
}

// stepChat switches to the neighbouring conversation in list order.
func (m Model) stepChat(dir int) (tea.Model, tea.Cmd) {
	list := m.opts.Chats.Chats()
	if len(list) == 0 {
		m.status = mutedStyle.Render("No conversations yet")
		return m, nil
	}

	selected := m.opts.Chats.SelectedID()
	idx := 0
	for i, c := range list {
		if c.ID == selected {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(list)) % len(list)
	return m, m.switchChatCmd(list[idx].ID)
}

// =============================================================================
// FOCUSED COMPONENT FALLTHROUGH
// =============================================================================

// updateFocused forwards remaining messages to the focused textinput.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.screen == screenLogin {
		m.nameInput, cmd = m.nameInput.Update(msg)
		cmds = append(cmds, cmd)
		m.emailInput, cmd = m.emailInput.Update(msg)
		cmds = append(cmds, cmd)
		m.passInput, cmd = m.passInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}
