// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
)

// Verify checks the installed bearer token against the server and
// returns the account it identifies. Also used for credit refresh:
// the response always carries the current credit balance.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login exchanges email/password credentials for a token/user pair.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	reqBody := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var creds Credentials
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", reqBody, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Register creates an account and returns its token/user pair.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	reqBody := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{name, email, password}

	var creds Credentials
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", reqBody, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// GoogleLogin exchanges a Google OAuth access token for a token/user pair.
func (c *Client) GoogleLogin(ctx context.Context, accessToken string) (*Credentials, error) {
	reqBody := struct {
		AccessToken string `json:"access_token"`
	}{accessToken}

	var creds Credentials
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/google", reqBody, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}
