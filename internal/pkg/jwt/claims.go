// internal/pkg/jwt/claims.go
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token claims bundle. The shape mirrors what the
// external auth backend's verifier expects: role, assurance level, email and
// provenance metadata on top of the registered claims.
type Claims struct {
	Role               string                 `json:"role"`
	AssuranceLevel     string                 `json:"aal,omitempty"`
	Email              string                 `json:"email,omitempty"`
	AppMetadata        map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata       map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject identity the token was minted for.
func (c *Claims) UserID() string {
	return c.Subject
}

// ExpiresAtTime returns the expiry instant, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IsExpired reports whether the token expiry has passed. A missing expiry
// counts as expired: a session token without exp is never trusted.
func (c *Claims) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Provider returns the provenance recorded in app_metadata, e.g. "beta".
func (c *Claims) Provider() string {
	if c.AppMetadata == nil {
		return ""
	}
	if p, ok := c.AppMetadata["provider"].(string); ok {
		return p
	}
	return ""
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
