// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - conversation management: list, new, delete.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// defaultChatName is used when "chats new" is given no name.
const defaultChatName = "New Chat"

// cmdChats routes the chats subcommands.
func (a *App) cmdChats(ctx context.Context, args *ArgParser) error {
	switch args.Positional(1) {
	case "", "list":
		return a.chatsList(ctx)
	case "new":
		return a.chatsNew(ctx, args)
	case "delete":
		return a.chatsDelete(ctx, args)
	default:
		return fmt.Errorf("unknown chats subcommand %q (want list, new or delete)", args.Positional(1))
	}
}

// chatsList prints the conversation collection, newest activity shown
// as a relative time, with the selected chat marked.
func (a *App) chatsList(ctx context.Context) error {
	if err := a.chats.Refresh(ctx); err != nil {
		return err
	}

	list := a.chats.Chats()
	if len(list) == 0 {
		fmt.Println(DimStyle.Render("No conversations yet. Start one with: askme ask <prompt>"))
		return nil
	}

	selected := a.chats.SelectedID()
	for _, chat := range list {
		marker := "  "
		style := ValueStyle
		if chat.ID == selected {
			marker = SelectedStyle.Render("* ")
			style = SelectedStyle
		}
		fmt.Printf("%s%s  %s  %s\n",
			marker,
			DimStyle.Render(chat.ID),
			style.Render(chat.Name),
			DimStyle.Render(relativeTime(chat.UpdatedAt)),
		)
	}
	return nil
}

// chatsNew creates a conversation and selects it.
func (a *App) chatsNew(ctx context.Context, args *ArgParser) error {
	name := strings.Join(args.PositionalFrom(2), " ")
	if name == "" {
		name = defaultChatName
	}

	chat, err := a.chats.Create(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("%s Created %q (%s)\n", SuccessStyle.Render("[OK]"), chat.Name, chat.ID)
	return nil
}

// chatsDelete deletes a conversation after confirmation.
// --yes skips the prompt for scripted use.
func (a *App) chatsDelete(ctx context.Context, args *ArgParser) error {
	id := args.Positional(2)
	if id == "" {
		return fmt.Errorf("usage: askme chats delete <id> [--yes]")
	}

	if !args.BoolFlag("yes") {
		if err := RequiresTTY("confirm deletion"); err != nil {
			return err
		}
		answer, err := PromptLine(fmt.Sprintf("Delete chat %s? [y/N] ", id))
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println(DimStyle.Render("Aborted"))
			return nil
		}
	}

	if err := a.chats.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("%s Deleted %s\n", SuccessStyle.Render("[OK]"), id)
	return nil
}

// relativeTime renders a timestamp as "3m ago" style text.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
