// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient returns a client pointed at the given handler with
// request pacing disabled.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL).WithRequestsPerSecond(0)
}

func TestVerify_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodGet || r.URL.Path != "/api/auth/verify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user": {"id": "u1", "name": "Ada", "email": "ada@example.com", "credits": 42}}`))
	})
	client.SetToken("tok-123")

	user, err := client.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if user.Name != "Ada" || user.Credits != 42 {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestVerify_UnauthorizedMapsToSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "token expired"}`))
	})
	client.SetToken("stale")

	_, err := client.Verify(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_PostsCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "hunter2" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Write([]byte(`{"token": "tok-1", "user": {"id": "u1", "name": "Ada", "email": "ada@example.com", "credits": 10}}`))
	})

	creds, err := client.Login(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Token != "tok-1" || creds.User.ID != "u1" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}

func TestLogin_RejectionCarriesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid email or password"}`))
	})

	_, err := client.Login(context.Background(), "ada@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestChats_CRUDPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chats": [{"_id": "c1", "name": "First", "messages": []}]}`))
	})
	mux.HandleFunc("POST /api/chats", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"chat": {"_id": "c2", "name": "` + body["name"] + `", "messages": []}}`))
	})
	mux.HandleFunc("GET /api/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chat": {"_id": "` + r.PathValue("id") + `", "name": "First", "messages": []}}`))
	})
	mux.HandleFunc("DELETE /api/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := NewClient(server.URL).WithRequestsPerSecond(0)
	client.SetToken("tok")
	ctx := context.Background()

	chats, err := client.ListChats(ctx)
	if err != nil || len(chats) != 1 || chats[0].ID != "c1" {
		t.Fatalf("ListChats = %v, %v", chats, err)
	}

	chat, err := client.CreateChat(ctx, "New Chat")
	if err != nil || chat.ID != "c2" || chat.Name != "New Chat" {
		t.Fatalf("CreateChat = %v, %v", chat, err)
	}

	got, err := client.GetChat(ctx, "c1")
	if err != nil || got.ID != "c1" {
		t.Fatalf("GetChat = %v, %v", got, err)
	}

	if err := client.DeleteChat(ctx, "c1"); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
}

func TestDecodeError_CreditsFlagBeatsEverything(t *testing.T) {
	// The credit flag must win even when an error message is present
	// and regardless of status code.
	bodies := []string{
		`{"credits_exhausted": true}`,
		`{"credits_exhausted": true, "error": "payment required"}`,
	}
	for _, body := range bodies {
		for _, status := range []int{http.StatusPaymentRequired, http.StatusForbidden, http.StatusInternalServerError} {
			err := decodeError(status, []byte(body))
			if !errors.Is(err, ErrCreditsExhausted) {
				t.Errorf("decodeError(%d, %s) = %v, want ErrCreditsExhausted", status, body, err)
			}
		}
	}
}

func TestDecodeError_PlainBodies(t *testing.T) {
	err := decodeError(http.StatusInternalServerError, []byte("boom"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("decodeError = %v", err)
	}

	if err := decodeError(http.StatusUnauthorized, []byte("")); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("bare 401 = %v, want ErrUnauthorized", err)
	}
}

func TestReadResponse_SizeLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, MaxResponseSize+1))
	})

	err := client.Health(context.Background())
	if err == nil {
		t.Fatal("expected size-limit error")
	}
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "ok"}`))
	})

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestNoTokenMeansNoAuthorizationHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header sent without a token")
		}
		w.Write([]byte(`{"response": "hi", "chatId": ""}`))
	})

	if _, err := client.SendPrompt(context.Background(), "hello", nil); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
}
