// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/chats"
	"github.com/jeranaias/askme-tui/internal/session"
)

// =============================================================================
// PHASES AND FIXED MESSAGES
// =============================================================================

// Phase is the lifecycle position of a submission.
type Phase int

const (
	// PhaseIdle means no submission is in flight.
	PhaseIdle Phase = iota

	// PhaseSubmitting means a request is on the wire.
	PhaseSubmitting

	// PhaseDelivered means the server accepted the submission and the
	// reply (or upload acknowledgment) landed in the transcript.
	PhaseDelivered

	// PhaseCreditsExhausted means the server interrupted the submission
	// because the account is out of credits.
	PhaseCreditsExhausted

	// PhaseFailed means the submission failed for any other reason.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDelivered:
		return "delivered"
	case PhaseCreditsExhausted:
		return "credits exhausted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy rejects a submission while another is in flight.
// Submissions are never queued; the caller retries after the current
// one lands.
var ErrBusy = errors.New("a submission is already in flight")

// Fixed transcript strings. These are rendered verbatim as assistant
// turns; changing them changes what users see.
const (
	// AckMessage acknowledges a file-only upload, which produces no
	// model reply.
	AckMessage = "File upload successful!"

	// FailureMessage is the placeholder appended after any submission
	// failure other than credit exhaustion.
	FailureMessage = "Something went wrong. Try again."

	// CreditsMessage is the placeholder appended when the server
	// interrupts a submission for lack of credits.
	CreditsMessage = "You're out of credits. Visit the Credits page to top up and keep chatting."
)

// Outcome is the terminal result of one submission.
type Outcome struct {
	// Phase is the terminal phase: Delivered, CreditsExhausted, Failed,
	// or Idle for an empty no-op submission.
	Phase Phase

	// Response is the assistant text appended to the transcript, empty
	// for an Idle no-op.
	Response string

	// ChatID is the conversation id the server bound or confirmed,
	// empty when the submission was not persisted to a conversation.
	ChatID string
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline dispatches submissions and owns the active transcript.
// Safe for concurrent use; at most one submission runs at a time.
type Pipeline struct {
	mu sync.Mutex

	client  *api.Client
	session *session.Manager
	chats   *chats.Synchronizer

	transcript []api.Message
	phase      Phase
	busy       bool
}

// NewPipeline creates a pipeline.
// Dependencies are injected explicitly; there is no ambient state.
func NewPipeline(client *api.Client, sess *session.Manager, sync *chats.Synchronizer) *Pipeline {
	return &Pipeline{
		client:  client,
		session: sess,
		chats:   sync,
		phase:   PhaseIdle,
	}
}

// Phase returns the current phase. Between submissions this is always
// PhaseIdle; terminal phases are reported through Outcome.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Transcript returns a copy of the active transcript.
func (p *Pipeline) Transcript() []api.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]api.Message, len(p.transcript))
	copy(out, p.transcript)
	return out
}

// SetTranscript replaces the active transcript, used when the user
// switches conversations. Rejected while a submission is in flight.
func (p *Pipeline) SetTranscript(messages []api.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	p.transcript = make([]api.Message, len(messages))
	copy(p.transcript, messages)
	return nil
}

// Clear empties the active transcript. Rejected while busy.
func (p *Pipeline) Clear() error {
	return p.SetTranscript(nil)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit dispatches one user turn.
//
// The user message is appended to the transcript before the network
// round-trip and is never removed afterwards, whatever the outcome.
// The transport is chosen by shape: text only goes as JSON, files only
// as a bare multipart upload, text plus files as a multipart chat
// submission.
//
// An empty submission (blank prompt, no files) is a silent no-op.
// The only error returned is ErrBusy; every network or server failure
// is absorbed into the transcript and reported through the Outcome.
func (p *Pipeline) Submit(ctx context.Context, prompt string, files []api.Attachment) (Outcome, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(files) == 0 {
		return Outcome{Phase: PhaseIdle}, nil
	}

	if err := p.begin(); err != nil {
		return Outcome{}, err
	}
	defer p.end()

	p.append(userMessage(prompt, files))

	var out Outcome
	switch {
	case len(files) == 0:
		out = p.sendText(ctx, prompt)
	case prompt == "":
		out = p.uploadOnly(ctx, files)
	default:
		out = p.sendTextWithFiles(ctx, prompt, files)
	}

	if out.Phase == PhaseDelivered {
		p.reconcile(ctx, out.ChatID)
	}
	return out, nil
}

// begin claims the single submission slot.
func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	p.busy = true
	p.phase = PhaseSubmitting
	return nil
}

// end releases the slot. The terminal phase lives in the Outcome; the
// pipeline itself always returns to idle.
func (p *Pipeline) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	p.phase = PhaseIdle
}

// =============================================================================
// TRANSPORTS
// =============================================================================

// sendText submits a text-only prompt as JSON.
func (p *Pipeline) sendText(ctx context.Context, prompt string) Outcome {
	result, err := p.client.SendPrompt(ctx, prompt, p.boundChatID())
	if err != nil {
		return p.interrupt(err)
	}
	p.append(assistantMessage(result.Response))
	return Outcome{Phase: PhaseDelivered, Response: result.Response, ChatID: result.ChatID}
}

// uploadOnly submits attachments without a prompt. The server only
// ingests; the fixed acknowledgment stands in for a model reply and
// nothing is persisted to a conversation.
func (p *Pipeline) uploadOnly(ctx context.Context, files []api.Attachment) Outcome {
	if err := p.client.UploadFiles(ctx, files); err != nil {
		return p.interrupt(err)
	}
	p.append(assistantMessage(AckMessage))
	return Outcome{Phase: PhaseDelivered, Response: AckMessage}
}

// sendTextWithFiles submits prompt and attachments together.
func (p *Pipeline) sendTextWithFiles(ctx context.Context, prompt string, files []api.Attachment) Outcome {
	result, err := p.client.SendPromptWithFiles(ctx, prompt, p.boundChatID(), files)
	if err != nil {
		return p.interrupt(err)
	}
	p.append(assistantMessage(result.Response))
	return Outcome{Phase: PhaseDelivered, Response: result.Response, ChatID: result.ChatID}
}

// interrupt absorbs a submission failure into the transcript. The
// credit interrupt is distinguished FIRST; everything else collapses
// into the generic placeholder. The optimistic user message stays.
func (p *Pipeline) interrupt(err error) Outcome {
	if errors.Is(err, api.ErrCreditsExhausted) {
		p.append(assistantMessage(CreditsMessage))
		return Outcome{Phase: PhaseCreditsExhausted, Response: CreditsMessage}
	}
	log.Printf("dispatch: submission failed: %v", err)
	p.append(assistantMessage(FailureMessage))
	return Outcome{Phase: PhaseFailed, Response: FailureMessage}
}

// =============================================================================
// BINDING AND RECONCILIATION
// =============================================================================

// boundChatID returns the selected conversation id for an
// authenticated session, or nil: unauthenticated submissions and
// unbound conversations carry no id and the server decides.
func (p *Pipeline) boundChatID() *string {
	if !p.session.IsAuthenticated() {
		return nil
	}
	id := p.chats.SelectedID()
	if id == "" {
		return nil
	}
	return &id
}

// reconcile mirrors the transcript into the chat collection and pulls
// fresh server state after a delivered submission. Every step is
// best-effort: the transcript is already correct and a failed refresh
// only leaves cached state stale.
func (p *Pipeline) reconcile(ctx context.Context, chatID string) {
	if !p.session.IsAuthenticated() {
		return
	}

	if chatID != "" {
		if p.chats.SelectedID() == "" {
			p.chats.Select(chatID)
		}
		p.chats.ApplyLocal(chatID, p.Transcript())
		if err := p.chats.Refresh(ctx); err != nil {
			log.Printf("dispatch: chat list refresh failed: %v", err)
		}
	}

	// Credits were spent; pull the updated balance.
	p.session.RefreshUser(ctx)
}

// =============================================================================
// MESSAGE CONSTRUCTION
// =============================================================================

// append adds a message to the transcript.
func (p *Pipeline) append(msg api.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transcript = append(p.transcript, msg)
}

// userMessage builds the optimistic echo of the user's turn.
func userMessage(prompt string, files []api.Attachment) api.Message {
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	return api.Message{
		ID:        uuid.NewString(),
		Role:      api.RoleUser,
		Content:   prompt,
		Files:     names,
		Timestamp: time.Now(),
	}
}

// assistantMessage builds an assistant turn, real or placeholder.
func assistantMessage(content string) api.Message {
	return api.Message{
		ID:        uuid.NewString(),
		Role:      api.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}
