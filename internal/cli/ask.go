// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot prompt submission.
//
// "askme ask <prompt>" sends a single turn and prints the reply.
// Attachments ride along with --file (repeatable); --file without a
// prompt is a bare upload.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/dispatch"
)

// MaxAttachmentSize caps how much of a file the CLI will read.
// SECURITY: Attachment size limit prevents memory exhaustion.
const MaxAttachmentSize = 10 * 1024 * 1024 // 10MB

// cmdAsk submits one turn and prints the outcome.
func (a *App) cmdAsk(ctx context.Context, args *ArgParser) error {
	prompt := strings.Join(args.PositionalFrom(1), " ")

	files, err := readAttachments(args.FlagAll("file"))
	if err != nil {
		return err
	}
	if strings.TrimSpace(prompt) == "" && len(files) == 0 {
		return fmt.Errorf("usage: askme ask <prompt> [--file <path>]")
	}

	if id := args.Flag("chat"); id != "" {
		a.chats.Select(id)
	}

	out, err := a.pipeline.Submit(ctx, prompt, files)
	if err != nil {
		return err
	}

	switch out.Phase {
	case dispatch.PhaseCreditsExhausted:
		fmt.Println(WarningStyle.Render(out.Response))
	case dispatch.PhaseFailed:
		fmt.Println(ErrorStyle.Render(out.Response))
	default:
		a.printReply(out.Response, args.BoolFlag("plain"))
	}
	return nil
}

// printReply renders assistant text, through glamour for interactive
// markdown-enabled terminals and verbatim otherwise.
func (a *App) printReply(text string, plain bool) {
	if plain || !IsStdoutTTY() || !a.cfg.UI.Markdown {
		fmt.Println(text)
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		fmt.Println(text)
		return
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Print(rendered)
}

// readAttachments loads the given paths into attachments.
// Filenames are flattened to the base name; the server never sees
// local directory structure.
func readAttachments(paths []string) ([]api.Attachment, error) {
	var files []api.Attachment
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot attach %s: %w", path, err)
		}
		if info.Size() > MaxAttachmentSize {
			return nil, fmt.Errorf("cannot attach %s: exceeds %d byte limit", path, int64(MaxAttachmentSize))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot attach %s: %w", path, err)
		}
		files = append(files, api.Attachment{
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return files, nil
}
