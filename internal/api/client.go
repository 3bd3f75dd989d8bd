// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the Ask Me API.
const (
	// DefaultBaseURL is the development server address.
	DefaultBaseURL = "http://localhost:5001"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// DefaultRequestsPerSecond paces outgoing requests so a busy UI
	// cannot hammer the server with refresh calls.
	DefaultRequestsPerSecond = 5
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared transport for all Ask Me API clients.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Error variables for common API failures.
var (
	// ErrUnauthorized indicates the bearer token was missing, invalid
	// or expired. The session layer tears down on this.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrCreditsExhausted is the business-rule interrupt: the account
	// has no usage credits left. Signalled by the response payload, not
	// by HTTP status alone.
	ErrCreditsExhausted = errors.New("credits exhausted")
)

// APIError represents a non-2xx response that is not one of the
// sentinel conditions above.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("askme API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("askme API error (HTTP %d)", e.Status)
}

// Client is a client for the Ask Me chat service API.
// The zero value is not usable; construct with NewClient.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string

	// token is the bearer credential; guarded separately because the
	// session layer swaps it while requests may be in flight.
	tokenMu sync.RWMutex
	token   string
}

// NewClient creates a client for the given base URL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: sharedTransport,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		userAgent: "askme/0.2.0",
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRequestsPerSecond sets the client-side request pacing.
// A rate of 0 disables pacing.
func (c *Client) WithRequestsPerSecond(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// TOKEN HANDLING
// =============================================================================

// SetToken installs the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// HasToken reports whether a bearer token is installed.
func (c *Client) HasToken() bool {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token != ""
}

// setHeaders sets the standard headers. The bearer header is attached
// only when a token is installed; the submission endpoints accept
// unauthenticated requests.
func (c *Client) setHeaders(req *http.Request) {
	c.tokenMu.RLock()
	token := c.token
	c.tokenMu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", c.userAgent)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs a JSON request and decodes a 2xx response into out.
// out may be nil when the response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

// do sends a prepared request and handles pacing, headers, the response
// size limit and error decoding.
func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	c.setHeaders(req)
	c.logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(MaxResponseSize))
	}
	return body, nil
}

// decodeError converts a non-2xx response into an error.
//
// The credit-exhaustion flag is checked FIRST: it is a business signal
// that may ride on any status code, and it must never be mistaken for a
// generic failure.
func decodeError(status int, body []byte) error {
	var flag struct {
		CreditsExhausted bool `json:"credits_exhausted"`
	}
	if json.Unmarshal(body, &flag) == nil && flag.CreditsExhausted {
		return ErrCreditsExhausted
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Error)
		}
		return &APIError{Status: status, Message: errResp.Error}
	}

	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

// =============================================================================
// LOGGING (without sensitive data)
// =============================================================================

// logRequest logs an API request. Headers and bodies are never logged:
// headers carry the bearer token, bodies carry user content.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status code and duration only.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health checks server reachability via GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}
