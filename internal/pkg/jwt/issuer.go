// internal/pkg/jwt/issuer.go
package jwt

import (
	"fmt"
	"time"

	xerrors "friendchat-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	// DefaultRole is the role claim the external backend expects on any
	// authenticated session.
	DefaultRole = "authenticated"

	// DefaultAssuranceLevel marks a single-factor session.
	DefaultAssuranceLevel = "aal1"

	// BetaProvider is the provenance recorded in app_metadata for sessions
	// minted through the beta access bridge.
	BetaProvider = "beta"
)

type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	kid      string // fixed key id, must match what the external verifier selects on
	ttl      time.Duration
}

// NewIssuer builds an issuer from config. An absent signing secret is a
// configuration error raised here, at construction, never per call.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: signing secret is not set", xerrors.ErrConfiguration)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		kid:      cfg.KID,
		ttl:      ttl,
	}, nil
}

// Issue mints a signed session token for the given subject. Empty email, role
// and zero expiry fall back to derived defaults; apart from issued-at and jti
// the claim set is fully determined by the inputs.
func (i *Issuer) Issue(subjectID, email, role string, expiresAt time.Time) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: subject id is required", xerrors.ErrInvalidInput)
	}

	now := time.Now()
	if expiresAt.IsZero() {
		expiresAt = now.Add(i.ttl)
	}
	if role == "" {
		role = DefaultRole
	}
	if email == "" {
		email = DeriveEmail(subjectID)
	}

	claims := &Claims{
		Role:           role,
		AssuranceLevel: DefaultAssuranceLevel,
		Email:          email,
		AppMetadata: map[string]interface{}{
			"provider":  BetaProvider,
			"providers": []string{BetaProvider},
		},
		UserMetadata: map[string]interface{}{
			"beta_user": true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subjectID,
			Audience:  []string{i.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if i.kid != "" {
		tok.Header["kid"] = i.kid
	}

	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// TTL returns the default session lifetime used when no expiry is supplied.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// DeriveEmail produces the deterministic placeholder address for a subject
// that was provisioned without a real one.
func DeriveEmail(subjectID string) string {
	prefix := subjectID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("beta-%s@beta.invalid", prefix)
}
