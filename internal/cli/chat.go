// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive REPL.
//
// USABILITY: readline-style line editing and persistent input history.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/dispatch"
)

// historyFile is the input history file name under the state directory.
const historyFile = "history"

// replInput wraps liner with history persistence.
type replInput struct {
	line *liner.State
	path string
}

// newReplInput creates the input handler and loads prior history.
func newReplInput(baseDir string) *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &replInput{
		line: line,
		path: filepath.Join(baseDir, historyFile),
	}
	if f, err := os.Open(in.path); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// Read reads one line, recording non-empty input in the history.
func (in *replInput) Read(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history and releases the terminal.
// SECURITY: History may contain prompts; owner read/write only.
func (in *replInput) Close() {
	if f, err := os.OpenFile(in.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// cmdChat runs the interactive REPL until exit or EOF.
func (a *App) cmdChat(ctx context.Context) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	// Load the selected conversation into the transcript, if any.
	if chat, ok := a.chats.Selected(); ok {
		a.pipeline.SetTranscript(chat.Messages)
	}

	input := newReplInput(a.store.BaseDir)
	defer input.Close()

	a.printReplWelcome()

	// Attachments staged with /attach ride on the next submission.
	var staged []api.Attachment

	for {
		line, err := input.Read(PromptStyle.Render("askme> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			cont, err := a.replCommand(ctx, line, &staged)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !cont {
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		out, err := a.pipeline.Submit(ctx, line, staged)
		if err != nil {
			if errors.Is(err, dispatch.ErrBusy) {
				fmt.Fprintln(os.Stderr, WarningStyle.Render("Still waiting on the previous message"))
				continue
			}
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			continue
		}
		staged = nil

		switch out.Phase {
		case dispatch.PhaseCreditsExhausted:
			fmt.Println(WarningStyle.Render(out.Response))
		case dispatch.PhaseFailed:
			fmt.Println(ErrorStyle.Render(out.Response))
		default:
			a.printReply(out.Response, false)
		}
	}
}

// replCommand handles one slash command. The bool result reports
// whether the REPL should keep running.
func (a *App) replCommand(ctx context.Context, line string, staged *[]api.Attachment) (bool, error) {
	args := NewArgParser(strings.Fields(strings.TrimPrefix(line, "/")))

	switch args.Subcommand() {
	case "exit", "quit":
		return false, nil

	case "help":
		a.printReplHelp()
		return true, nil

	case "new":
		name := strings.Join(args.PositionalFrom(1), " ")
		if name == "" {
			name = defaultChatName
		}
		chat, err := a.chats.Create(ctx, name)
		if err != nil {
			return true, err
		}
		a.pipeline.Clear()
		fmt.Println(DimStyle.Render("Switched to new chat " + chat.ID))
		return true, nil

	case "chats":
		return true, a.chatsList(ctx)

	case "select":
		id := args.Positional(1)
		if id == "" {
			return true, errors.New("usage: /select <id>")
		}
		chat, err := a.chats.RefreshChat(ctx, id)
		if err != nil {
			return true, err
		}
		a.chats.Select(id)
		if err := a.pipeline.SetTranscript(chat.Messages); err != nil {
			return true, err
		}
		fmt.Println(DimStyle.Render(fmt.Sprintf("Switched to %q (%d messages)", chat.Name, len(chat.Messages))))
		return true, nil

	case "delete":
		id := args.Positional(1)
		if id == "" {
			id = a.chats.SelectedID()
		}
		if id == "" {
			return true, errors.New("usage: /delete <id>")
		}
		if err := a.chats.Delete(ctx, id); err != nil {
			return true, err
		}
		a.pipeline.Clear()
		fmt.Println(DimStyle.Render("Deleted " + id))
		return true, nil

	case "attach":
		path := args.Positional(1)
		if path == "" {
			return true, errors.New("usage: /attach <path>")
		}
		files, err := readAttachments([]string{path})
		if err != nil {
			return true, err
		}
		*staged = append(*staged, files...)
		fmt.Println(DimStyle.Render(fmt.Sprintf("Attached %s (%d staged, sent with the next message)",
			files[0].Name, len(*staged))))
		return true, nil

	case "credits":
		a.session.RefreshUser(ctx)
		fmt.Printf("%s %d\n", LabelStyle.Render("Credits"), a.session.Credits())
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", line)
	}
}

// printReplWelcome prints the session banner.
func (a *App) printReplWelcome() {
	fmt.Println(TitleStyle.Render("askme"))
	if user := a.session.User(); user != nil {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Logged in as %s · %d credits", user.Email, user.Credits)))
	} else {
		fmt.Println(DimStyle.Render("Not logged in; replies will not be saved"))
	}
	if chat, ok := a.chats.Selected(); ok {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Continuing %q (%d messages)", chat.Name, len(chat.Messages))))
	}
	fmt.Println(DimStyle.Render("Type /help for commands, /exit to leave"))
	fmt.Println()
}

// printReplHelp lists the slash commands.
func (a *App) printReplHelp() {
	fmt.Println("  /new [name]      Start a new conversation")
	fmt.Println("  /chats           List conversations")
	fmt.Println("  /select <id>     Switch conversation")
	fmt.Println("  /delete [id]     Delete a conversation (default: current)")
	fmt.Println("  /attach <path>   Stage a file for the next message")
	fmt.Println("  /credits         Show the current credit balance")
	fmt.Println("  /exit            Leave the REPL")
}
