// Package token mints the bearer tokens the API expects. In production the
// identity provider issues these; this package backs local development, the
// CLI and tests.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mint signs a token whose subject is the given opaque user id.
func Mint(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
