// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListChats returns the authenticated user's conversations, most
// recently updated first (server ordering).
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var out struct {
		Chats []Chat `json:"chats"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// CreateChat creates a new conversation with the given display name.
func (c *Client) CreateChat(ctx context.Context, name string) (*Chat, error) {
	reqBody := struct {
		Name string `json:"name"`
	}{name}

	var out struct {
		Chat Chat `json:"chat"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chats", reqBody, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

// GetChat fetches one conversation by id, messages included.
func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var out struct {
		Chat Chat `json:"chat"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

// DeleteChat deletes a conversation server-side.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/chats/"+url.PathEscape(id), nil, nil)
}
