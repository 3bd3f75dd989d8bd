// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArgParser_FlagFormats(t *testing.T) {
	args := NewArgParser([]string{"delete", "c-42", "--yes", "--email=ada@example.com", "--chat", "c-7"})

	if got := args.Subcommand(); got != "delete" {
		t.Errorf("Subcommand() = %q", got)
	}
	if got := args.Positional(1); got != "c-42" {
		t.Errorf("Positional(1) = %q", got)
	}
	if !args.BoolFlag("yes") {
		t.Error("BoolFlag(yes) = false")
	}
	if got := args.Flag("email"); got != "ada@example.com" {
		t.Errorf("Flag(email) = %q", got)
	}
	if got := args.Flag("chat"); got != "c-7" {
		t.Errorf("Flag(chat) = %q", got)
	}
	if args.HasFlag("file") {
		t.Error("HasFlag(file) = true for absent flag")
	}
}

func TestArgParser_RepeatedFlags(t *testing.T) {
	args := NewArgParser([]string{"--file", "a.txt", "--file", "b.txt", "what", "is", "this"})

	files := args.FlagAll("file")
	if len(files) != 2 || files[0] != "a.txt" || files[1] != "b.txt" {
		t.Errorf("FlagAll(file) = %v", files)
	}
	// Flag returns the last occurrence.
	if got := args.Flag("file"); got != "b.txt" {
		t.Errorf("Flag(file) = %q", got)
	}

	joined := args.PositionalFrom(0)
	if len(joined) != 3 || joined[0] != "what" {
		t.Errorf("PositionalFrom(0) = %v", joined)
	}
}

func TestArgParser_ExplicitBool(t *testing.T) {
	args := NewArgParser([]string{"--plain=false", "--yes=true"})
	if args.BoolFlag("plain") {
		t.Error("BoolFlag(plain) = true, want explicit false")
	}
	if !args.BoolFlag("yes") {
		t.Error("BoolFlag(yes) = false")
	}
}

func TestArgParser_Empty(t *testing.T) {
	args := NewArgParser(nil)
	if got := args.Subcommand(); got != "" {
		t.Errorf("Subcommand() = %q", got)
	}
	if got := args.Positional(5); got != "" {
		t.Errorf("Positional(5) = %q", got)
	}
	if got := args.PositionalFrom(1); got != nil {
		t.Errorf("PositionalFrom(1) = %v", got)
	}
}

func TestReadAttachments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("alpha"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := readAttachments([]string{path})
	if err != nil {
		t.Fatalf("readAttachments: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("len(files) = %d", len(files))
	}
	if files[0].Name != "notes.txt" {
		t.Errorf("Name = %q, want base name without directories", files[0].Name)
	}
	if string(files[0].Data) != "alpha" {
		t.Errorf("Data = %q", files[0].Data)
	}
}

func TestReadAttachments_MissingFile(t *testing.T) {
	if _, err := readAttachments([]string{filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tc := range cases {
		if got := relativeTime(tc.t); got != tc.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
