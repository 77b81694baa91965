// internal/pkg/session/manager.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	xerrors "friendchat-service/internal/pkg/errors"
	"friendchat-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// StorageKey is the single durable slot holding the signed session token.
const StorageKey = "beta:session"

// RemoteRevoker performs the remote half of a sign-out. Optional; failures
// are warnings, never sign-out failures.
type RemoteRevoker interface {
	RevokeSession(ctx context.Context, sessionToken string) error
}

// Manager owns the client-side signed session token: structural validation,
// durable persistence and restoration, local identity lookup, and sign-out.
// It never touches the opaque beta token store. The canonical session state
// lives in the StateStore; the manager holds only the transient token needed
// to authorize the next call.
type Manager struct {
	persistence KeyValuePersistence
	authorizer  *AuthTransport
	revoker     RemoteRevoker
	logger      *zap.Logger

	mu     sync.RWMutex
	token  string
	claims *jwt.Claims
}

func NewManager(persistence KeyValuePersistence, authorizer *AuthTransport, revoker RemoteRevoker, logger *zap.Logger) *Manager {
	return &Manager{
		persistence: persistence,
		authorizer:  authorizer,
		revoker:     revoker,
		logger:      logger,
	}
}

// SetSession structurally parses the token, rejects it when already expired,
// persists it to the durable slot and repoints the outbound authorizer.
// Nothing is written for a rejected token.
func (m *Manager) SetSession(ctx context.Context, tokenString string) error {
	claims, err := jwt.ParseUnverified(tokenString)
	if err != nil {
		return err
	}

	now := time.Now()
	if claims.IsExpired(now) {
		return fmt.Errorf("%w: token has expired", xerrors.ErrTokenExpired)
	}

	ttl := claims.ExpiresAtTime().Sub(now)
	if err := m.persistence.Set(ctx, StorageKey, tokenString, ttl); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.token = tokenString
	m.claims = claims
	m.mu.Unlock()

	m.authorizer.SetToken(tokenString)
	return nil
}

// RestoreSession re-establishes the session from durable storage on process
// start. A stored token past expiry is purged and reported as a failure; a
// stale session is never surfaced as valid.
func (m *Manager) RestoreSession(ctx context.Context) bool {
	stored, err := m.persistence.Get(ctx, StorageKey)
	if err != nil {
		m.logger.Warn("failed to read stored session", zap.Error(err))
		return false
	}
	if stored == "" {
		return false
	}

	claims, err := jwt.ParseUnverified(stored)
	if err != nil {
		m.logger.Warn("stored session token is malformed, purging", zap.Error(err))
		m.purge(ctx)
		return false
	}

	if claims.IsExpired(time.Now()) {
		m.logger.Info("stored session token expired, purging",
			zap.Time("expired_at", claims.ExpiresAtTime()),
		)
		m.purge(ctx)
		return false
	}

	m.mu.Lock()
	m.token = stored
	m.claims = claims
	m.mu.Unlock()

	m.authorizer.SetToken(stored)
	return true
}

// CurrentIdentity derives the session holder from local claim inspection
// only; no network call. Returns nil when no live session exists.
func (m *Manager) CurrentIdentity() *Identity {
	m.mu.RLock()
	claims := m.claims
	m.mu.RUnlock()

	if claims == nil {
		return nil
	}

	return &Identity{
		ID:        claims.UserID(),
		Email:     claims.Email,
		Role:      claims.Role,
		Provider:  claims.Provider(),
		ExpiresAt: claims.ExpiresAtTime(),
	}
}

// Token returns the current in-memory session token, empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// ExpiresWithin reports whether the live session token expires within d.
// False when no session is held.
func (m *Manager) ExpiresWithin(d time.Duration) bool {
	m.mu.RLock()
	claims := m.claims
	m.mu.RUnlock()

	if claims == nil {
		return false
	}
	return claims.ExpiresAtTime().Before(time.Now().Add(d))
}

// SignOut clears the in-memory token and the durable slot first, so identity
// is gone even if the remote revocation call is slow or fails, then notifies
// the external backend best-effort. Local state is authoritative; a remote
// failure is downgraded to a warning.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.token = ""
	m.claims = nil
	m.mu.Unlock()

	m.authorizer.ClearToken()

	if err := m.persistence.Remove(ctx, StorageKey); err != nil {
		m.logger.Warn("failed to clear stored session", zap.Error(err))
	}

	if token != "" && m.revoker != nil {
		if err := m.revoker.RevokeSession(ctx, token); err != nil {
			m.logger.Warn("remote sign-out failed, local session already cleared", zap.Error(err))
		}
	}

	return nil
}

func (m *Manager) purge(ctx context.Context) {
	if err := m.persistence.Remove(ctx, StorageKey); err != nil {
		m.logger.Warn("failed to purge stored session", zap.Error(err))
	}
}
