// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// The three submission transports. They are deliberately distinct
// endpoints server-side and must not be collapsed client-side:
//
//   - text only            → POST /api/chat         (JSON)
//   - files only           → POST /api/upload       (multipart)
//   - text and files       → POST /api/chat/upload  (multipart)

// SendPrompt submits a text-only prompt.
// chatID is nil for a conversation that has not been bound to a server
// id yet; the server then creates one and reports it in the result.
func (c *Client) SendPrompt(ctx context.Context, prompt string, chatID *string) (*AskResult, error) {
	reqBody := struct {
		Prompt string  `json:"prompt"`
		ChatID *string `json:"chatId"`
	}{prompt, chatID}

	var result AskResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadFiles submits attachments without a prompt. The server only
// acknowledges ingestion; no model reply is produced.
func (c *Client) UploadFiles(ctx context.Context, files []Attachment) error {
	body, contentType, err := multipartBody("", nil, files)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, nil)
}

// SendPromptWithFiles submits a prompt together with attachments and
// returns the model reply.
func (c *Client) SendPromptWithFiles(ctx context.Context, prompt string, chatID *string, files []Attachment) (*AskResult, error) {
	body, contentType, err := multipartBody(prompt, chatID, files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/upload", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var result AskResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// multipartBody builds a multipart form with optional prompt/chatId
// fields and one "files" part per attachment.
func multipartBody(prompt string, chatID *string, files []Attachment) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if prompt != "" {
		if err := w.WriteField("prompt", prompt); err != nil {
			return nil, "", fmt.Errorf("failed to write prompt field: %w", err)
		}
	}
	if chatID != nil {
		if err := w.WriteField("chatId", *chatID); err != nil {
			return nil, "", fmt.Errorf("failed to write chatId field: %w", err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
