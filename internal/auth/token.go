// Package auth inspects the bearer token the server hands out on login.
//
// The client never holds the signing key, so tokens are parsed without
// verification and only used to decide whether a stored session is worth
// restoring. The server remains the authority on validity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Claims are the fields the client reads from a session token.
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// ParseUnverified decodes token without checking its signature.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// TokenExpiry returns the token's exp claim.
func TokenExpiry(token string) (time.Time, error) {
	claims, err := ParseUnverified(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// SessionUsable reports whether a stored session should be restored at now.
// The token's exp claim wins; expiresAtMs (Unix milliseconds, 0 if unknown)
// is the fallback. A session with no known expiry is usable.
func SessionUsable(token string, expiresAtMs int64, now time.Time) bool {
	if token != "" {
		if exp, err := TokenExpiry(token); err == nil {
			return now.Before(exp)
		}
	}
	if expiresAtMs > 0 {
		return now.Before(time.UnixMilli(expiresAtMs))
	}
	return true
}
