// internal/pkg/session/authorizer.go
package session

import (
	"net/http"
	"sync"
)

// AuthTransport is the outbound-request authorizer: an http.RoundTripper that
// attaches the current session token as a bearer Authorization header on
// every call. The session manager repoints it on sign-in and clears it on
// sign-out; requests issued with no token pass through untouched.
type AuthTransport struct {
	mu    sync.RWMutex
	base  http.RoundTripper
	token string
}

func NewAuthTransport(base http.RoundTripper) *AuthTransport {
	return &AuthTransport{base: base}
}

func (t *AuthTransport) SetToken(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

func (t *AuthTransport) ClearToken() {
	t.SetToken("")
}

func (t *AuthTransport) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Token()
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
