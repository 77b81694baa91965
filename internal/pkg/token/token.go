// internal/pkg/token/token.go
package token

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultOpaqueLength is the length of beta access tokens handed out to users.
const DefaultOpaqueLength = 12

// GenerateOpaque produces an alphanumeric token from a cryptographically secure
// random source, one character per random byte modulo the alphabet size. The
// small modulo bias is accepted: the token is a bearer lookup key, not a
// cryptographic secret. A failing random source is the only error and callers
// treat it as fatal, there is no weaker fallback.
func GenerateOpaque(length int) (string, error) {
	if length <= 0 {
		length = DefaultOpaqueLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("secure random source unavailable: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// NewID returns a globally unique 128-bit identifier in standard UUID layout.
func NewID() string {
	return uuid.NewString()
}
