// internal/pkg/session/types.go
package session

import "time"

// Identity is the locally derived view of the session holder, read straight
// from the self-describing session token without a server round trip.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Provider  string    `json:"provider,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserInfo is the minimal user shape exposed to UI consumers of the state store.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// State is the reactive session state: unauthenticated at process start,
// populated after redemption or restoration, cleared on sign-out, expiry or
// verification failure.
type State struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	User            *UserInfo `json:"user"`
}

// LoginResult carries what the application service hands back on a
// successful beta token redemption.
type LoginResult struct {
	JWTToken string
	UserID   string
}
