// internal/pkg/jwt/verifier.go
package jwt

import (
	"errors"
	"fmt"

	xerrors "friendchat-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier builds a verifier sharing the issuer's symmetric secret. Like
// the issuer, a missing secret fails at construction.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: signing secret is not set", xerrors.ErrConfiguration)
	}
	return &Verifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Verify validates signature, algorithm, expiry, issuer and audience. Every
// failure wraps ErrVerification; expiry additionally matches ErrTokenExpired
// so callers can report it without string matching. Any failure means "not
// authenticated"; there is no weaker retry path.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w: %w", xerrors.ErrVerification, xerrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", xerrors.ErrVerification, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", xerrors.ErrVerification)
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: invalid issuer %q", xerrors.ErrVerification, claims.Issuer)
	}

	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, fmt.Errorf("%w: invalid audience", xerrors.ErrVerification)
	}

	return claims, nil
}

// ParseUnverified decodes the claims without checking the signature. This is
// the structural inspection path used by the client session manager: it owns
// no secret and only needs the self-describing claims plus its own expiry
// check. Never use this to grant access server-side.
func ParseUnverified(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: malformed token: %w", xerrors.ErrVerification, err)
	}
	return claims, nil
}
