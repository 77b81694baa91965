package session

import (
	"context"
	"testing"
	"time"

	xerrors "friendchat-service/internal/pkg/errors"

	"go.uber.org/zap"
)

func newTestStateStore(t *testing.T, auth Authenticator) (*StateStore, *Manager, *MemoryStore) {
	t.Helper()
	kv := NewMemoryStore()
	manager := NewManager(kv, NewAuthTransport(nil), nil, zap.NewNop())
	return NewStateStore(manager, auth, zap.NewNop()), manager, kv
}

func TestStateStoreStartsUnauthenticated(t *testing.T) {
	store, _, _ := newTestStateStore(t, nil)

	state := store.Get()
	if state.IsAuthenticated || state.User != nil {
		t.Fatalf("fresh store must be unauthenticated, got %+v", state)
	}
}

func TestCheckAuthStatusWithStoredSession(t *testing.T) {
	store, _, kv := newTestStateStore(t, nil)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-1", "u@example.com", "", time.Now().Add(time.Hour))
	kv.Set(ctx, StorageKey, signed, 0)

	store.CheckAuthStatus(ctx)

	state := store.Get()
	if !state.IsAuthenticated {
		t.Fatal("expected authenticated state after restoration")
	}
	if state.User == nil || state.User.ID != "user-1" || state.User.Email != "u@example.com" {
		t.Fatalf("unexpected user: %+v", state.User)
	}
}

func TestCheckAuthStatusClearsOnStaleSession(t *testing.T) {
	store, manager, kv := newTestStateStore(t, nil)
	ctx := context.Background()

	stale, _ := testIssuer(t).Issue("user-1", "", "", time.Now().Add(-time.Minute))
	kv.Set(ctx, StorageKey, stale, 0)

	store.CheckAuthStatus(ctx)

	if store.Get().IsAuthenticated {
		t.Fatal("stale session must leave the store unauthenticated")
	}
	if manager.CurrentIdentity() != nil {
		t.Fatal("manager must hold no identity after a stale restore")
	}
	if stored, _ := kv.Get(ctx, StorageKey); stored != "" {
		t.Fatal("stale slot must be purged")
	}
}

func TestLoginNormalizesFromStore(t *testing.T) {
	signed, _ := testIssuer(t).Issue("user-9", "nine@example.com", "", time.Now().Add(time.Hour))
	auth := AuthenticatorFunc(func(ctx context.Context, authToken string) (LoginResult, error) {
		if authToken != "goodtoken000" {
			return LoginResult{}, xerrors.ErrNotFound
		}
		// Deliberately wrong UserID in the response payload: state must come
		// from the installed token, not from this shape.
		return LoginResult{JWTToken: signed, UserID: "bogus-id"}, nil
	})

	store, _, _ := newTestStateStore(t, auth)
	ctx := context.Background()

	if err := store.Login(ctx, "goodtoken000"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	state := store.Get()
	if !state.IsAuthenticated {
		t.Fatal("expected authenticated state after login")
	}
	if state.User.ID != "user-9" {
		t.Fatalf("state must derive from the session token, got user %q", state.User.ID)
	}
}

func TestLoginFailurePropagates(t *testing.T) {
	auth := AuthenticatorFunc(func(ctx context.Context, authToken string) (LoginResult, error) {
		return LoginResult{}, xerrors.ErrTokenExpired
	})
	store, _, _ := newTestStateStore(t, auth)

	err := store.Login(context.Background(), "whatever0000")
	if !xerrors.Is(err, xerrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if store.Get().IsAuthenticated {
		t.Fatal("failed login must not authenticate")
	}
}

func TestLoginRejectsExpiredSessionToken(t *testing.T) {
	expired, _ := testIssuer(t).Issue("user-9", "", "", time.Now().Add(-time.Second))
	auth := AuthenticatorFunc(func(ctx context.Context, authToken string) (LoginResult, error) {
		return LoginResult{JWTToken: expired, UserID: "user-9"}, nil
	})
	store, _, kv := newTestStateStore(t, auth)
	ctx := context.Background()

	if err := store.Login(ctx, "sometoken000"); !xerrors.Is(err, xerrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if stored, _ := kv.Get(ctx, StorageKey); stored != "" {
		t.Fatal("expired token must not reach durable storage")
	}
}

func TestLogoutResetsUnconditionally(t *testing.T) {
	store, manager, _ := newTestStateStore(t, nil)
	ctx := context.Background()

	signed, _ := testIssuer(t).Issue("user-1", "", "", time.Now().Add(time.Hour))
	manager.SetSession(ctx, signed)
	store.CheckAuthStatus(ctx)
	if !store.Get().IsAuthenticated {
		t.Fatal("precondition: expected authenticated state")
	}

	store.Logout(ctx)

	if store.Get().IsAuthenticated {
		t.Fatal("store must be unauthenticated after logout")
	}
	if manager.CurrentIdentity() != nil {
		t.Fatal("manager identity must be gone after logout")
	}
}

func TestSubscribeNotifiesAndUnsubscribes(t *testing.T) {
	store, _, kv := newTestStateStore(t, nil)
	ctx := context.Background()

	var seen []State
	unsub := store.Subscribe(func(s State) { seen = append(seen, s) })

	signed, _ := testIssuer(t).Issue("user-1", "", "", time.Now().Add(time.Hour))
	kv.Set(ctx, StorageKey, signed, 0)
	store.CheckAuthStatus(ctx)

	if len(seen) != 1 || !seen[0].IsAuthenticated {
		t.Fatalf("expected one authenticated notification, got %+v", seen)
	}

	unsub()
	store.Logout(ctx)
	if len(seen) != 1 {
		t.Fatalf("unsubscribed callback must not fire again, got %d notifications", len(seen))
	}
}

func TestLateResponseDoesNotResurrectSession(t *testing.T) {
	// A login response arriving after the user already signed out again must
	// not leave stale authenticated state: Login re-derives from the store.
	var signedOld string
	auth := AuthenticatorFunc(func(ctx context.Context, authToken string) (LoginResult, error) {
		return LoginResult{JWTToken: signedOld, UserID: "user-1"}, nil
	})
	store, manager, _ := newTestStateStore(t, auth)
	ctx := context.Background()

	signedOld, _ = testIssuer(t).Issue("user-1", "", "", time.Now().Add(time.Hour))
	if err := store.Login(ctx, "tok"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	store.Logout(ctx)

	// State reflects the store's truth, not the login callback's payload.
	if store.Get().IsAuthenticated {
		t.Fatal("unexpected authenticated state after logout")
	}
	if manager.Token() != "" {
		t.Fatal("manager must hold no token after logout")
	}
}
