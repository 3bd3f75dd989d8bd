// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chats

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/session"
)

// ErrNotAuthenticated is returned by operations that require a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Synchronizer owns the ordered chat collection and the selection.
// Safe for concurrent use; writes are last-writer-wins by design.
type Synchronizer struct {
	mu sync.RWMutex

	client  *api.Client
	session *session.Manager

	chats    []api.Chat
	selected string // chat id; "" = none

	// revisions counts optimistic local writes per chat id since the
	// last authoritative refresh of that chat.
	revisions map[string]uint64
}

// NewSynchronizer creates a synchronizer.
// Dependencies are injected explicitly; there is no ambient state.
func NewSynchronizer(client *api.Client, sess *session.Manager) *Synchronizer {
	return &Synchronizer{
		client:    client,
		session:   sess,
		revisions: make(map[string]uint64),
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Chats returns a copy of the current collection.
func (s *Synchronizer) Chats() []api.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

// Get returns a copy of one chat by id.
func (s *Synchronizer) Get(id string) (api.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chats {
		if c.ID == id {
			return c, true
		}
	}
	return api.Chat{}, false
}

// SelectedID returns the selected chat id, "" when none.
func (s *Synchronizer) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the selected chat, if it is present in the
// collection. A selected id without a collection entry (possible right
// after binding a brand-new conversation) reports ok=false until the
// next refresh reconciles it.
func (s *Synchronizer) Selected() (api.Chat, bool) {
	s.mu.RLock()
	id := s.selected
	s.mu.RUnlock()
	if id == "" {
		return api.Chat{}, false
	}
	return s.Get(id)
}

// Select sets the selection by id. The id may be unknown to the local
// collection; it then resolves on the next refresh.
func (s *Synchronizer) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Revision returns the optimistic-write counter for a chat id.
func (s *Synchronizer) Revision(id string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[id]
}

// =============================================================================
// SERVER OPERATIONS
// =============================================================================

// Refresh replaces the local collection with the server's list.
// No-op when unauthenticated: clearing happens only through Clear on
// the explicit unauthenticated transition, never implicitly here.
// When nothing is selected, the first chat becomes selected.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return nil
	}

	list, err := s.client.ListChats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = list
	s.revisions = make(map[string]uint64)
	if s.selected == "" && len(list) > 0 {
		s.selected = list[0].ID
	}
	return nil
}

// Create creates a chat server-side, prepends it locally and selects
// it. The head insert is deliberate: a just-created chat appears first
// regardless of server ordering, for immediate feedback.
func (s *Synchronizer) Create(ctx context.Context, name string) (*api.Chat, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	chat, err := s.client.CreateChat(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append([]api.Chat{*chat}, s.chats...)
	s.selected = chat.ID
	return chat, nil
}

// Delete deletes a chat server-side, then removes it locally. When the
// deleted chat was selected, selection falls back to the first
// remaining chat, or to none when the collection is now empty.
// On any failure local state is left untouched.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	if err := s.client.DeleteChat(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.chats = kept
	delete(s.revisions, id)

	if s.selected == id {
		if len(s.chats) > 0 {
			s.selected = s.chats[0].ID
		} else {
			s.selected = ""
		}
	}
	return nil
}

// RefreshChat re-fetches one chat and overwrites the collection entry;
// the fetched copy is authoritative and resets the chat's optimistic
// revision counter. A chat unknown to the local collection (fresh
// binding) is appended.
func (s *Synchronizer) RefreshChat(ctx context.Context, id string) (*api.Chat, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	chat, err := s.client.GetChat(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.chats {
		if s.chats[i].ID == id {
			s.chats[i] = *chat
			found = true
			break
		}
	}
	if !found {
		s.chats = append([]api.Chat{*chat}, s.chats...)
	}
	s.revisions[id] = 0
	return chat, nil
}

// =============================================================================
// LOCAL OPERATIONS
// =============================================================================

// ApplyLocal overwrites a chat's message sequence without a server
// round-trip and bumps its updatedAt and revision. This is the
// optimistic-write path used by the dispatch pipeline; the cache may
// diverge from server truth until the next RefreshChat.
func (s *Synchronizer) ApplyLocal(id string, messages []api.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == id {
			s.chats[i].Messages = messages
			s.chats[i].UpdatedAt = time.Now()
			s.revisions[id]++
			return
		}
	}
	log.Printf("chats: optimistic write to unknown chat %s dropped", id)
}

// Clear empties the collection and selection. Called on the transition
// to Unauthenticated.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = nil
	s.selected = ""
	s.revisions = make(map[string]uint64)
}
