// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/chats"
	"github.com/jeranaias/askme-tui/internal/session"
	"github.com/jeranaias/askme-tui/internal/storage"
)

const userJSON = `{"id": "u1", "name": "Ada", "email": "ada@example.com", "credits": 5}`

// newPipeline wires a pipeline against a stub server. When token is
// non-empty the session is verified first, so the handler must serve
// /api/auth/verify.
func newPipeline(t *testing.T, token string, handler http.HandlerFunc) (*Pipeline, *chats.Synchronizer, *session.Manager) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := storage.NewStoreWithDir(t.TempDir())
	require.NoError(t, err)

	client := api.NewClient(server.URL).WithRequestsPerSecond(0)
	sess := session.NewManager(client, store)
	sync := chats.NewSynchronizer(client, sess)
	sess.SetClearedCallback(sync.Clear)

	if token != "" {
		require.NoError(t, store.SaveToken(token))
		require.True(t, sess.Verify(context.Background()), "verify against stub failed")
	}
	return NewPipeline(client, sess, sync), sync, sess
}

// ancillary serves the endpoints that reconciliation touches after a
// delivered submission. Returns true when it handled the request.
func ancillary(w http.ResponseWriter, r *http.Request) bool {
	switch r.URL.Path {
	case "/api/auth/verify":
		w.Write([]byte(`{"user": ` + userJSON + `}`))
	case "/api/chats":
		w.Write([]byte(`{"chats": [{"_id": "c-bound", "name": "New Chat", "messages": []}]}`))
	default:
		return false
	}
	return true
}

func roles(msgs []api.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

// =============================================================================
// TRANSPORT SELECTION
// =============================================================================

func TestSubmit_TextOnly_UnboundSendsNullChatID(t *testing.T) {
	var body string
	p, sync, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`{"response": "Hi there", "chatId": "c-bound"}`))
	})

	out, err := p.Submit(context.Background(), "hello", nil)
	require.NoError(t, err)

	// Unbound conversation: chatId must be present and null, not omitted.
	assert.JSONEq(t, `{"prompt": "hello", "chatId": null}`, body)

	assert.Equal(t, PhaseDelivered, out.Phase)
	assert.Equal(t, "Hi there", out.Response)
	assert.Equal(t, "c-bound", out.ChatID)

	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "Hi there", msgs[1].Content)

	// The server-issued id becomes the selection.
	assert.Equal(t, "c-bound", sync.SelectedID())
}

func TestSubmit_TextOnly_BoundChatID(t *testing.T) {
	var body string
	p, sync, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`{"response": "ok", "chatId": "c-7"}`))
	})
	sync.Select("c-7")

	_, err := p.Submit(context.Background(), "again", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt": "again", "chatId": "c-7"}`, body)
	assert.Equal(t, "c-7", sync.SelectedID())
}

func TestSubmit_FilesOnly_UploadsAndAcknowledges(t *testing.T) {
	var gotNames []string
	p, sync, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("prompt"))
		for _, fh := range r.MultipartForm.File["files"] {
			gotNames = append(gotNames, fh.Filename)
		}
		w.Write([]byte(`{"message": "uploaded"}`))
	})

	files := []api.Attachment{
		{Name: "notes.txt", Data: []byte("alpha")},
		{Name: "report.pdf", Data: []byte("beta")},
	}
	out, err := p.Submit(context.Background(), "  ", files)
	require.NoError(t, err)

	assert.Equal(t, []string{"notes.txt", "report.pdf"}, gotNames)
	assert.Equal(t, PhaseDelivered, out.Phase)
	assert.Equal(t, AckMessage, out.Response)
	assert.Empty(t, out.ChatID, "uploads are not bound to a conversation")

	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Empty(t, msgs[0].Content)
	assert.Equal(t, []string{"notes.txt", "report.pdf"}, msgs[0].Files)
	assert.Equal(t, AckMessage, msgs[1].Content)

	assert.Empty(t, sync.SelectedID(), "upload must not create a selection")
}

func TestSubmit_TextAndFiles_UsesChatUpload(t *testing.T) {
	p, sync, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		require.Equal(t, "/api/chat/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "summarize this", r.FormValue("prompt"))
		assert.Equal(t, "c-7", r.FormValue("chatId"))
		require.Len(t, r.MultipartForm.File["files"], 1)
		w.Write([]byte(`{"response": "Summary.", "chatId": "c-7"}`))
	})
	sync.Select("c-7")

	out, err := p.Submit(context.Background(), "summarize this",
		[]api.Attachment{{Name: "doc.md", Data: []byte("# doc")}})
	require.NoError(t, err)

	assert.Equal(t, PhaseDelivered, out.Phase)
	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Equal(t, "summarize this", msgs[0].Content)
	assert.Equal(t, []string{"doc.md"}, msgs[0].Files)
}

// =============================================================================
// FAILURE AND INTERRUPT PATHS
// =============================================================================

func TestSubmit_CreditsExhaustedInterrupt(t *testing.T) {
	p, _, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"credits_exhausted": true, "error": "out of credits"}`))
	})

	out, err := p.Submit(context.Background(), "one more", nil)
	require.NoError(t, err, "interrupt is an outcome, not an error")

	assert.Equal(t, PhaseCreditsExhausted, out.Phase)
	assert.Equal(t, CreditsMessage, out.Response)

	// The optimistic user message survives, followed by the interrupt.
	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Equal(t, "one more", msgs[0].Content)
	assert.Equal(t, CreditsMessage, msgs[1].Content)
}

func TestSubmit_FailureKeepsOptimisticMessage(t *testing.T) {
	p, _, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	})

	out, err := p.Submit(context.Background(), "hello?", nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseFailed, out.Phase)
	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Equal(t, "hello?", msgs[0].Content)
	assert.Equal(t, FailureMessage, msgs[1].Content)
}

func TestSubmit_NetworkFailure(t *testing.T) {
	store, err := storage.NewStoreWithDir(t.TempDir())
	require.NoError(t, err)
	client := api.NewClient("http://127.0.0.1:1").WithRequestsPerSecond(0)
	sess := session.NewManager(client, store)
	p := NewPipeline(client, sess, chats.NewSynchronizer(client, sess))

	out, err := p.Submit(context.Background(), "anyone there", nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, out.Phase)
	assert.Equal(t, FailureMessage, out.Response)
}

// =============================================================================
// GUARDS
// =============================================================================

func TestSubmit_EmptyIsNoop(t *testing.T) {
	p, _, _ := newPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	})

	out, err := p.Submit(context.Background(), "   \n\t", nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, out.Phase)
	assert.Empty(t, p.Transcript())
}

func TestSubmit_BusyRejectsSecondSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p, _, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		close(started)
		<-release
		w.Write([]byte(`{"response": "slow reply", "chatId": "c-bound"}`))
	})

	done := make(chan Outcome, 1)
	go func() {
		out, err := p.Submit(context.Background(), "first", nil)
		assert.NoError(t, err)
		done <- out
	}()

	<-started
	assert.Equal(t, PhaseSubmitting, p.Phase())

	_, err := p.Submit(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	out := <-done
	assert.Equal(t, PhaseDelivered, out.Phase)
	assert.Equal(t, PhaseIdle, p.Phase())

	// Only the first submission reached the transcript.
	msgs := p.Transcript()
	require.Equal(t, []string{api.RoleUser, api.RoleAssistant}, roles(msgs))
	assert.Equal(t, "first", msgs[0].Content)
}

func TestSubmit_UnauthenticatedSkipsReconciliation(t *testing.T) {
	p, sync, _ := newPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		// Only the submission endpoint may be hit: no verify, no chat
		// list refresh for a guest.
		require.Equal(t, "/api/chat", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"response": "guest reply", "chatId": ""}`))
	})

	out, err := p.Submit(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseDelivered, out.Phase)
	assert.Empty(t, sync.SelectedID())
}

// =============================================================================
// TRANSCRIPT MANAGEMENT
// =============================================================================

func TestSetTranscript_ReplacesAndCopies(t *testing.T) {
	p, _, _ := newPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {})

	src := []api.Message{{Role: api.RoleUser, Content: "old"}}
	require.NoError(t, p.SetTranscript(src))
	src[0].Content = "mutated"

	msgs := p.Transcript()
	require.Len(t, msgs, 1)
	assert.Equal(t, "old", msgs[0].Content, "pipeline must hold its own copy")

	require.NoError(t, p.Clear())
	assert.Empty(t, p.Transcript())
}

func TestSetTranscript_RejectedWhileBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p, _, _ := newPipeline(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if ancillary(w, r) {
			return
		}
		close(started)
		<-release
		w.Write([]byte(`{"response": "ok", "chatId": "c-bound"}`))
	})

	done := make(chan struct{})
	go func() {
		p.Submit(context.Background(), "first", nil)
		close(done)
	}()

	<-started
	assert.ErrorIs(t, p.SetTranscript(nil), ErrBusy)
	close(release)
	<-done
}
