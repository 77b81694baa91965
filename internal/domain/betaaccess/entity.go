// internal/domain/betaaccess/entity.go
package betaaccess

import (
	"database/sql"
	"time"
)

// Token is a server-persisted beta access token. AuthToken is the opaque
// public-facing credential; JWTToken is the session token minted at creation
// time. UserID stays null until the first successful redemption binds a
// subject, and is never reassigned afterwards.
type Token struct {
	ID        string         `json:"id" db:"id"`
	AuthToken string         `json:"auth_token" db:"auth_token"`
	JWTToken  string         `json:"-" db:"jwt_token"`
	UserID    sql.NullString `json:"user_id" db:"user_id"`
	IsUsed    bool           `json:"is_used" db:"is_used"`
	ExpiresAt time.Time      `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	CreatedBy sql.NullString `json:"created_by" db:"created_by"`
}

// TokenValidation is the transient result of validating an opaque token.
// Produced fresh on every call, never persisted. IsValid=false with a
// populated record means expired or already used; "no such token" is
// signalled by the repository returning nil instead.
type TokenValidation struct {
	TokenID  string         `json:"token_id"`
	JWTToken string         `json:"-"`
	UserID   sql.NullString `json:"user_id"`
	IsValid  bool           `json:"is_valid"`
}

// BoundTo reports whether the token is already bound to the given subject.
func (v *TokenValidation) BoundTo(userID string) bool {
	return v.UserID.Valid && v.UserID.String == userID
}

// Unbound reports whether the token has never been redeemed.
func (v *TokenValidation) Unbound() bool {
	return !v.UserID.Valid
}
