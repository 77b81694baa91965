// internal/pkg/session/store.go
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Authenticator redeems an opaque beta token for a session token. Implemented
// by the beta access application service.
type Authenticator interface {
	Authenticate(ctx context.Context, authToken string) (LoginResult, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, authToken string) (LoginResult, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, authToken string) (LoginResult, error) {
	return f(ctx, authToken)
}

// StateStore is the process-wide reactive session state. It is an explicit,
// injected container, not a package-level singleton: tests construct a fresh
// instance each. It owns the canonical {IsAuthenticated, User} state and
// re-derives it from the session manager rather than trusting any single
// response payload, which also makes a late response from an abandoned
// attempt harmless.
type StateStore struct {
	manager *Manager
	auth    Authenticator
	logger  *zap.Logger

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

func NewStateStore(manager *Manager, auth Authenticator, logger *zap.Logger) *StateStore {
	return &StateStore{
		manager: manager,
		auth:    auth,
		logger:  logger,
		subs:    make(map[int]func(State)),
	}
}

// Get returns the current session state.
func (s *StateStore) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for state changes and returns an unsubscribe
// function. fn is invoked outside the store's lock.
func (s *StateStore) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CheckAuthStatus normalizes state from the single source of truth: attempt
// restoration from durable storage; on failure clear everything, on success
// resolve the identity locally.
func (s *StateStore) CheckAuthStatus(ctx context.Context) {
	if !s.manager.RestoreSession(ctx) {
		s.set(State{})
		return
	}

	identity := s.manager.CurrentIdentity()
	if identity == nil {
		s.set(State{})
		return
	}

	if s.manager.ExpiresWithin(24 * time.Hour) {
		s.logger.Warn("session token expires soon",
			zap.Time("expires_at", identity.ExpiresAt),
		)
	}

	s.set(State{
		IsAuthenticated: true,
		User:            &UserInfo{ID: identity.ID, Email: identity.Email},
	})
}

// Login redeems a beta token, installs the returned session token and then
// re-runs CheckAuthStatus instead of trusting the login response shape.
func (s *StateStore) Login(ctx context.Context, authToken string) error {
	result, err := s.auth.Authenticate(ctx, authToken)
	if err != nil {
		return err
	}

	if err := s.manager.SetSession(ctx, result.JWTToken); err != nil {
		return err
	}

	s.CheckAuthStatus(ctx)
	return nil
}

// Logout signs out and unconditionally resets to unauthenticated, whatever
// the remote outcome was.
func (s *StateStore) Logout(ctx context.Context) {
	if err := s.manager.SignOut(ctx); err != nil {
		s.logger.Warn("sign-out reported an error", zap.Error(err))
	}
	s.set(State{})
}

func (s *StateStore) set(state State) {
	s.mu.Lock()
	s.state = state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
