package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CSRF tokens are derived deterministically from the session id and the
// server secret, so no token state is stored: verification recomputes
// and compares. Rotating the secret invalidates every issued token.
type CSRF struct {
	secret string
}

// NewCSRF creates a CSRF token generator/verifier
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: secret}
}

// Token returns the CSRF token for a session id:
// sha256(sessionID + secret) truncated to 32 hex characters.
func (c *CSRF) Token(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID + c.secret))
	return hex.EncodeToString(sum[:])[:32]
}

// Verify reports whether token matches the session id, in constant
// time.
func (c *CSRF) Verify(token, sessionID string) bool {
	expected := c.Token(sessionID)
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
