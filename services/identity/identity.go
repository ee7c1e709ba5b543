// Package identity pulls a display name out of the ordering app's JWT.
// The token is NOT verified here: the client has no business holding the
// signing key, and the name is cosmetic. The authoritative server does
// its own verification.
package identity

import (
	"log"

	"github.com/golang-jwt/jwt/v5"
)

// DisplayNameFromToken extracts a human-readable name from the session
// token. Returns "" when the token is absent, unparseable or carries no
// name claim; callers fall back to a generated guest name.
func DisplayNameFromToken(token string) string {
	if token == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		log.Printf("[IDENTITY-WARN] Could not parse session token: %v", err)
		return ""
	}

	for _, key := range []string{"name", "preferred_username"} {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
