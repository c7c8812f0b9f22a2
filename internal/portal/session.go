package portal

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Portal endpoints, relative to the configured base URL.
const (
	DisclaimerPath = "/casesearch/processDisclaimer.jis"
	SearchPath     = "/casesearch/inquirySearch.jis"
)

// Token is the opaque session cookie captured from the disclaimer response.
// It is read-only after capture and shared by every outstanding request.
type Token string

// Header returns the request headers carrying the session cookie.
func (t Token) Header() http.Header {
	h := http.Header{}
	if t != "" {
		h.Set("Cookie", string(t))
	}
	return h
}

// Manager performs the one-time disclaimer handshake and supplies the
// session token to every subsequent request. When the remote end starts
// rejecting requests, Refresh re-acquires under a lock so that concurrent
// fetches trigger at most one new handshake.
type Manager struct {
	client  *Client
	baseURL string
	logger  *zap.Logger

	mu      sync.Mutex
	current Token
}

// NewManager builds a Manager.
func NewManager(client *Client, baseURL string, logger *zap.Logger) *Manager {
	return &Manager{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Acquire performs the disclaimer-acceptance sequence: a GET to capture the
// session cookie, then a POST accepting the disclaimer with that cookie.
// Failure here is fatal for the whole run; no work can proceed without a
// session, so callers wrap Acquire with their own restart policy.
func (m *Manager) Acquire(ctx context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireLocked(ctx)
}

func (m *Manager) acquireLocked(ctx context.Context) (Token, error) {
	resp, err := m.client.Get(ctx, m.baseURL+DisclaimerPath, nil)
	if err != nil {
		return "", fmt.Errorf("fetch disclaimer: %w", err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("fetch disclaimer: status %d", resp.StatusCode)
	}
	cookie := resp.Headers.Get("Set-Cookie")
	if cookie == "" {
		return "", fmt.Errorf("disclaimer response carried no session cookie")
	}

	token := Token(cookie)
	accept, err := m.client.PostForm(ctx, m.baseURL+DisclaimerPath, map[string]string{
		"action":     "Continue",
		"disclaimer": "Y",
	}, token.Header())
	if err != nil {
		return "", fmt.Errorf("accept disclaimer: %w", err)
	}
	if !accept.OK() {
		return "", fmt.Errorf("accept disclaimer: status %d", accept.StatusCode)
	}

	m.current = token
	m.logger.Info("Acquired portal session")
	return token, nil
}

// Token returns the current session token.
func (m *Manager) Token() Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Refresh re-acquires the session when the stale token is still current.
// If another goroutine already refreshed, the newer token is returned as is.
func (m *Manager) Refresh(ctx context.Context, stale Token) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != stale {
		return m.current, nil
	}
	m.logger.Warn("Re-acquiring portal session")
	return m.acquireLocked(ctx)
}
