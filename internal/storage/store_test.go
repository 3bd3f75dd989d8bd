// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStoreWithDir: %v", err)
	}
	return store
}

func TestToken_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	if got := store.Token(); got != "" {
		t.Errorf("Token() on fresh store = %q, want empty", got)
	}

	if err := store.SaveToken("tok-abc123"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if got := store.Token(); got != "tok-abc123" {
		t.Errorf("Token() = %q, want %q", got, "tok-abc123")
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() after clear = %q, want empty", got)
	}

	// Clearing twice must not fail.
	if err := store.ClearToken(); err != nil {
		t.Errorf("ClearToken on absent token: %v", err)
	}
}

func TestToken_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	store := newTestStore(t)
	if err := store.SaveToken("secret"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.BaseDir, "token"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file perm = %o, want 0600", perm)
	}
}

func TestTheme_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	if got := store.Theme(); got != "" {
		t.Errorf("Theme() on fresh store = %q, want empty", got)
	}

	if err := store.SaveTheme("dark"); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	if got := store.Theme(); got != "dark" {
		t.Errorf("Theme() = %q, want %q", got, "dark")
	}
}

func TestRead_TrimsWhitespace(t *testing.T) {
	store := newTestStore(t)

	// A hand-edited file may carry a trailing newline.
	if err := os.WriteFile(filepath.Join(store.BaseDir, "token"), []byte("tok-xyz\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := store.Token(); got != "tok-xyz" {
		t.Errorf("Token() = %q, want %q", got, "tok-xyz")
	}
}
