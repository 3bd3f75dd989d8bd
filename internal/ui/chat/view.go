// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - rendering for both screens.

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/ui/styles"
	"github.com/jeranaias/askme-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(styles.UserBubbleFg).
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(styles.UserBubbleBorder).
			PaddingLeft(1)

	assistantBubbleStyle = lipgloss.NewStyle().
				Foreground(styles.AssistantBubbleFg).
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(styles.AssistantBubbleBorder).
				PaddingLeft(1)

	roleUserStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	roleAssistantStyle = lipgloss.NewStyle().
				Foreground(styles.Purple).
				Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	formBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(1, 2)
)

// View renders the active screen.
func (m Model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	return m.viewChat()
}

// =============================================================================
// LOGIN SCREEN
// =============================================================================

// viewLogin renders the login/register form.
func (m Model) viewLogin() string {
	var b strings.Builder

	title := "Log in to Ask Me"
	hint := "enter to log in · ctrl+r to register · ctrl+c to quit"
	if m.registering {
		title = "Create an account"
		hint = "enter to register · ctrl+r to log in · ctrl+c to quit"
	}

	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")
	if m.registering {
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
	}
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passInput.View())
	b.WriteString("\n")

	if m.formErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.formErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(hint))

	form := formBoxStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return form
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

// viewChat renders header, transcript viewport, input and status bar.
func (m Model) viewChat() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader shows the active conversation and account state.
func (m Model) renderHeader() string {
	name := "unsaved conversation"
	if chat, ok := m.opts.Chats.Selected(); ok {
		name = chat.Name
	}
	left := headerStyle.Render("askme") + "  " + mutedStyle.Render(util.TruncateRunes(name, 40))

	right := mutedStyle.Render("not logged in")
	if user := m.opts.Session.User(); user != nil {
		right = mutedStyle.Render(fmt.Sprintf("%s · %d credits", user.Email, user.Credits))
	}

	// Right-align using display width, not byte length.
	gap := m.width - runewidth.StringWidth(stripANSI(left)) - runewidth.StringWidth(stripANSI(right))
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderStatusBar shows the spinner while waiting, otherwise the last
// status message or the key hints.
func (m Model) renderStatusBar() string {
	if m.waiting {
		return m.spinner.View() + mutedStyle.Render(" thinking...")
	}
	if m.status != "" {
		return m.status
	}
	return mutedStyle.Render("/help commands · ctrl+n new chat · ctrl+c quit")
}

// stripANSI removes escape sequences for width measurement.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport re-renders the transcript into the viewport and
// scrolls to the latest message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.opts.Pipeline.Transcript(), ""))
	m.viewport.GotoBottom()
}

// refreshViewportWithPending shows the just-typed prompt immediately,
// before the pipeline's optimistic append becomes visible.
func (m *Model) refreshViewportWithPending(pending string) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.opts.Pipeline.Transcript(), pending))
	m.viewport.GotoBottom()
}

// renderTranscript renders messages as bubbles, optionally followed by
// a pending user prompt.
func (m Model) renderTranscript(messages []api.Message, pending string) string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	if len(messages) == 0 && pending == "" {
		b.WriteString(mutedStyle.Render("No messages yet. Ask anything."))
		return b.String()
	}

	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderBubble(msg, width, m.markdownRenderer(width)))
	}
	if pending != "" {
		if len(messages) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderBubble(api.Message{Role: api.RoleUser, Content: pending}, width, nil))
	}
	return b.String()
}

// renderBubble renders one message with its role label. Assistant
// content goes through the markdown renderer when one is available.
func renderBubble(msg api.Message, width int, renderer *glamour.TermRenderer) string {
	var label string
	var bubble lipgloss.Style
	if msg.Role == api.RoleAssistant {
		label = roleAssistantStyle.Render("Ask Me")
		bubble = assistantBubbleStyle
	} else {
		label = roleUserStyle.Render("You")
		bubble = userBubbleStyle
	}

	content := msg.Content
	if len(msg.Files) > 0 {
		attach := mutedStyle.Render("[attached: " + strings.Join(msg.Files, ", ") + "]")
		if content == "" {
			content = attach
		} else {
			content += "\n" + attach
		}
	}

	if msg.Role == api.RoleAssistant && renderer != nil {
		if rendered, err := renderer.Render(msg.Content); err == nil {
			content = strings.TrimRight(rendered, "\n")
			if len(msg.Files) > 0 {
				content += "\n" + mutedStyle.Render("[attached: "+strings.Join(msg.Files, ", ")+"]")
			}
		}
	}

	return label + "\n" + bubble.Width(width).Render(content)
}

// markdownRenderer builds a glamour renderer for the current width, or
// nil when markdown rendering is disabled.
func (m Model) markdownRenderer(width int) *glamour.TermRenderer {
	if m.opts.Config == nil || !m.opts.Config.UI.Markdown {
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}
