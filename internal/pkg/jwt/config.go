// internal/pkg/jwt/config.go
package jwt

import "time"

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

type Manager struct {
	Issuer   *Issuer
	Verifier *Verifier
}

// Build constructs the issuer/verifier pair from shared config. Either side
// failing means the signing secret is absent, which is fatal for any
// component that mints or verifies session tokens.
func Build(cfg Config) (*Manager, error) {
	iss, err := NewIssuer(cfg)
	if err != nil {
		return nil, err
	}

	ver, err := NewVerifier(cfg)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Issuer:   iss,
		Verifier: ver,
	}, nil
}
