// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jeranaias/askme-tui/internal/api"
	"github.com/jeranaias/askme-tui/internal/storage"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// State is the authentication state of the client.
type State int

const (
	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated State = iota

	// StateVerifying means the startup token check is in flight.
	StateVerifying

	// StateAuthenticated means token and user are both set and verified.
	StateAuthenticated

	// StateRefreshing means a best-effort credit refresh is in flight;
	// the session remains valid throughout.
	StateRefreshing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Result is the outcome of a credential-based auth attempt. Credential
// rejection is a normal result, not a Go error: the caller shows Error
// to the user and the session stays as it was.
type Result struct {
	Success bool
	Error   string
}

// networkErrorMessage is shown for transport-level failures where the
// server never produced a rejection message.
const networkErrorMessage = "Network error"

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the token/user pair and its transitions.
// Safe for concurrent use; the last write wins. Login, Register and
// GoogleLogin must not be invoked concurrently with each other against
// the same session (caller discipline).
type Manager struct {
	mu sync.Mutex

	client *api.Client
	store  *storage.Store

	state State
	user  *api.User

	// onCleared fires on any transition to Unauthenticated; the chat
	// synchronizer hooks this to empty its collection.
	onCleared func()

	// onLogout fires after an explicit logout; the UI hooks this to
	// navigate to the login surface.
	onLogout func()
}

// NewManager creates a session manager.
// Dependencies are injected explicitly; the manager holds no globals.
func NewManager(client *api.Client, store *storage.Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
		state:  StateUnauthenticated,
	}
}

// SetClearedCallback sets the function called whenever the session
// transitions to Unauthenticated (logout or failed verification).
func (m *Manager) SetClearedCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCleared = fn
}

// SetLogoutCallback sets the function called after an explicit logout.
func (m *Manager) SetLogoutCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = fn
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a verified session exists.
// A refresh in flight still counts as authenticated.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated || m.state == StateRefreshing
}

// User returns a copy of the current user, or nil when logged out.
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Credits returns the current credit balance, 0 when logged out.
func (m *Manager) Credits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return 0
	}
	return m.user.Credits
}

// =============================================================================
// VERIFY (startup gate)
// =============================================================================

// Verify checks a previously persisted token against the server.
// Called once at startup. Returns true when the stored token resolved
// to a user. Any failure — rejection or transport — clears the stored
// token and leaves the client logged out; there is no retry.
func (m *Manager) Verify(ctx context.Context) bool {
	stored := m.store.Token()
	if stored == "" {
		return false
	}

	m.mu.Lock()
	m.state = StateVerifying
	m.mu.Unlock()
	m.client.SetToken(stored)

	user, err := m.client.Verify(ctx)
	if err != nil {
		log.Printf("session: stored token rejected: %v", err)
		m.tearDown()
		return false
	}

	m.mu.Lock()
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()
	return true
}

// =============================================================================
// CREDENTIAL ENTRY POINTS
// =============================================================================

// Login exchanges email/password for a session.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	creds, err := m.client.Login(ctx, email, password)
	return m.applyCredentials(creds, err)
}

// Register creates an account and opens a session.
func (m *Manager) Register(ctx context.Context, name, email, password string) Result {
	creds, err := m.client.Register(ctx, name, email, password)
	return m.applyCredentials(creds, err)
}

// GoogleLogin exchanges a Google OAuth access token for a session.
func (m *Manager) GoogleLogin(ctx context.Context, accessToken string) Result {
	creds, err := m.client.GoogleLogin(ctx, accessToken)
	return m.applyCredentials(creds, err)
}

// applyCredentials is the shared tail of the three credential entry
// points. On failure nothing is mutated: token and user never move
// independently. On success token and user are applied together under
// one lock.
func (m *Manager) applyCredentials(creds *api.Credentials, err error) Result {
	if err != nil {
		var apiErr *api.APIError
		switch {
		case errors.As(err, &apiErr):
			return Result{Success: false, Error: apiErr.Message}
		case errors.Is(err, api.ErrUnauthorized):
			return Result{Success: false, Error: "Invalid email or password"}
		default:
			log.Printf("session: auth request failed: %v", err)
			return Result{Success: false, Error: networkErrorMessage}
		}
	}

	if persistErr := m.store.SaveToken(creds.Token); persistErr != nil {
		// The session is still usable for this process; it just will
		// not survive a restart.
		log.Printf("session: failed to persist token: %v", persistErr)
	}
	m.client.SetToken(creds.Token)

	m.mu.Lock()
	user := creds.User
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	return Result{Success: true}
}

// =============================================================================
// REFRESH / LOGOUT
// =============================================================================

// RefreshUser re-verifies the current token purely to pull an updated
// credit balance. No-op when unauthenticated. Failures are logged and
// swallowed: the UI shows a stale balance until the next refresh.
func (m *Manager) RefreshUser(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateRefreshing
	m.mu.Unlock()

	user, err := m.client.Verify(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRefreshing {
		// A logout raced the refresh; drop the result.
		return
	}
	if err != nil {
		log.Printf("session: credit refresh failed: %v", err)
		m.state = StateAuthenticated
		return
	}
	m.user = user
	m.state = StateAuthenticated
}

// Logout tears down the session. Always succeeds locally; there is no
// server-side call to fail.
func (m *Manager) Logout() {
	m.tearDown()

	m.mu.Lock()
	onLogout := m.onLogout
	m.mu.Unlock()
	if onLogout != nil {
		onLogout()
	}
}

// tearDown clears token and user together and signals the cleared
// callback. Callbacks run outside the lock.
func (m *Manager) tearDown() {
	if err := m.store.ClearToken(); err != nil {
		log.Printf("session: failed to clear stored token: %v", err)
	}
	m.client.ClearToken()

	m.mu.Lock()
	m.user = nil
	m.state = StateUnauthenticated
	onCleared := m.onCleared
	m.mu.Unlock()

	if onCleared != nil {
		onCleared()
	}
}
