package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	xerrors "friendchat-service/internal/pkg/errors"
	"friendchat-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

func testIssuer(t *testing.T) *jwt.Issuer {
	t.Helper()
	iss, err := jwt.NewIssuer(jwt.Config{
		Secret:   "session-test-secret",
		Issuer:   "friendchat-beta",
		Audience: "authenticated",
		KID:      "beta-key-1",
	})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	return iss
}

type blockedRevoker struct {
	called  chan struct{}
	release chan struct{}
	err     error
}

func (r *blockedRevoker) RevokeSession(ctx context.Context, token string) error {
	if r.called != nil {
		close(r.called)
	}
	if r.release != nil {
		<-r.release
	}
	return r.err
}

func newTestManager(t *testing.T, revoker RemoteRevoker) (*Manager, *MemoryStore, *AuthTransport) {
	t.Helper()
	store := NewMemoryStore()
	authorizer := NewAuthTransport(nil)
	return NewManager(store, authorizer, revoker, zap.NewNop()), store, authorizer
}

func TestSetSessionPersistsAndAuthorizes(t *testing.T) {
	m, store, authorizer := newTestManager(t, nil)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-1", "u@example.com", "", time.Now().Add(time.Hour))
	if err := m.SetSession(ctx, signed); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	stored, _ := store.Get(ctx, StorageKey)
	if stored != signed {
		t.Fatal("session token was not written to durable storage")
	}
	if authorizer.Token() != signed {
		t.Fatal("authorizer was not repointed at the new token")
	}

	id := m.CurrentIdentity()
	if id == nil || id.ID != "user-1" || id.Email != "u@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestSetSessionRejectsExpiredWithoutWriting(t *testing.T) {
	m, store, _ := newTestManager(t, nil)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-1", "", "", time.Now().Add(-time.Second))
	err := m.SetSession(ctx, signed)
	if !xerrors.Is(err, xerrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if stored, _ := store.Get(ctx, StorageKey); stored != "" {
		t.Fatal("durable storage must not be written for an expired token")
	}
	if m.CurrentIdentity() != nil {
		t.Fatal("no identity may be held after a rejected token")
	}
}

func TestSetSessionRejectsMalformed(t *testing.T) {
	m, store, _ := newTestManager(t, nil)
	ctx := context.Background()

	if err := m.SetSession(ctx, "garbage.token.value"); !xerrors.Is(err, xerrors.ErrVerification) {
		t.Fatalf("expected ErrVerification, got %v", err)
	}
	if stored, _ := store.Get(ctx, StorageKey); stored != "" {
		t.Fatal("durable storage must stay empty")
	}
}

func TestRestoreSessionHappyPath(t *testing.T) {
	m, store, authorizer := newTestManager(t, nil)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-2", "", "", time.Now().Add(time.Hour))
	store.Set(ctx, StorageKey, signed, 0)

	if !m.RestoreSession(ctx) {
		t.Fatal("expected restoration to succeed")
	}
	if authorizer.Token() != signed {
		t.Fatal("authorizer not re-established after restore")
	}
	if id := m.CurrentIdentity(); id == nil || id.ID != "user-2" {
		t.Fatalf("unexpected identity after restore: %+v", id)
	}
}

func TestRestoreSessionPurgesStale(t *testing.T) {
	m, store, _ := newTestManager(t, nil)
	ctx := context.Background()

	stale, _ := testIssuer(t).Issue("user-3", "", "", time.Now().Add(-time.Minute))
	store.Set(ctx, StorageKey, stale, 0)

	if m.RestoreSession(ctx) {
		t.Fatal("stale session must never restore as valid")
	}
	if stored, _ := store.Get(ctx, StorageKey); stored != "" {
		t.Fatal("stale stored token must be purged")
	}
	if m.CurrentIdentity() != nil {
		t.Fatal("identity must be nil after failed restoration")
	}
}

func TestRestoreSessionEmptySlot(t *testing.T) {
	m, _, _ := newTestManager(t, nil)
	if m.RestoreSession(context.Background()) {
		t.Fatal("restoration must fail with an empty slot")
	}
}

func TestSignOutClearsBeforeRemoteConfirms(t *testing.T) {
	revoker := &blockedRevoker{called: make(chan struct{}), release: make(chan struct{})}
	m, store, authorizer := newTestManager(t, revoker)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-4", "", "", time.Now().Add(time.Hour))
	if err := m.SetSession(ctx, signed); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.SignOut(ctx) }()

	// The remote call is still blocked, local state must already be gone.
	<-revoker.called
	if m.CurrentIdentity() != nil {
		t.Fatal("identity must be unavailable while remote sign-out is in flight")
	}
	if m.Token() != "" {
		t.Fatal("in-memory token must be cleared before remote confirmation")
	}
	if authorizer.Token() != "" {
		t.Fatal("authorizer must be cleared before remote confirmation")
	}
	if stored, _ := store.Get(ctx, StorageKey); stored != "" {
		t.Fatal("durable slot must be cleared before remote confirmation")
	}

	close(revoker.release)
	if err := <-done; err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
}

func TestSignOutSwallowsRemoteFailure(t *testing.T) {
	revoker := &blockedRevoker{err: errors.New("backend unreachable")}
	m, _, _ := newTestManager(t, revoker)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-5", "", "", time.Now().Add(time.Hour))
	m.SetSession(ctx, signed)

	if err := m.SignOut(ctx); err != nil {
		t.Fatalf("remote failure must be downgraded to a warning, got %v", err)
	}
	if m.CurrentIdentity() != nil {
		t.Fatal("identity must be nil after sign-out")
	}
}

func TestExpiresWithin(t *testing.T) {
	m, _, _ := newTestManager(t, nil)
	ctx := context.Background()

	if m.ExpiresWithin(time.Hour) {
		t.Fatal("no session held, ExpiresWithin must be false")
	}

	signed, _ := testIssuer(t).Issue("user-6", "", "", time.Now().Add(30*time.Minute))
	m.SetSession(ctx, signed)

	if !m.ExpiresWithin(time.Hour) {
		t.Fatal("session expiring in 30m must report true for 1h window")
	}
	if m.ExpiresWithin(time.Minute) {
		t.Fatal("session expiring in 30m must report false for 1m window")
	}
}

func TestAuthTransportInjectsBearer(t *testing.T) {
	authorizer := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{
			"X-Got-Auth": []string{req.Header.Get("Authorization")},
		}}, nil
	}))

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)

	resp, err := authorizer.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	if got := resp.Header.Get("X-Got-Auth"); got != "" {
		t.Fatalf("expected no auth header without a token, got %q", got)
	}

	authorizer.SetToken("tok-123")
	resp, _ = authorizer.RoundTrip(req)
	if got := resp.Header.Get("X-Got-Auth"); got != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", got)
	}

	// The original request must not be mutated.
	if req.Header.Get("Authorization") != "" {
		t.Fatal("authorizer mutated the caller's request")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
