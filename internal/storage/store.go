// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/askme-tui/internal/util"
)

// File names under the base directory.
const (
	tokenFile = "token"
	themeFile = "theme"
)

// Store handles persistence of the bearer token and theme preference.
type Store struct {
	// BaseDir is the directory holding persisted state.
	// Default: ~/.askme/
	BaseDir string
}

// NewStore creates a store rooted at ~/.askme.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".askme"))
}

// NewStoreWithDir creates a store with a custom base directory.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir}, nil
}

// =============================================================================
// TOKEN
// =============================================================================

// Token returns the persisted bearer token, or "" when logged out.
// Read errors are treated as "no token"; the session layer re-verifies
// every stored token against the server anyway.
func (s *Store) Token() string {
	return s.read(tokenFile)
}

// SaveToken persists the bearer token.
// SECURITY: the token file is owner-readable only.
func (s *Store) SaveToken(token string) error {
	return util.AtomicWriteFile(filepath.Join(s.BaseDir, tokenFile), []byte(token), 0600)
}

// ClearToken removes the persisted token. Clearing an already-absent
// token succeeds.
func (s *Store) ClearToken() error {
	err := os.Remove(filepath.Join(s.BaseDir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// THEME
// =============================================================================

// Theme returns the persisted theme preference ("light" or "dark"),
// or "" when none has been saved.
func (s *Store) Theme() string {
	return s.read(themeFile)
}

// SaveTheme persists the theme preference.
func (s *Store) SaveTheme(theme string) error {
	return util.AtomicWriteFile(filepath.Join(s.BaseDir, themeFile), []byte(theme), 0644)
}

// read returns the trimmed contents of a state file, or "" on any error.
func (s *Store) read(name string) string {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
