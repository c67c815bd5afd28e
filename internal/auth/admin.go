package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/salonibalkondekar/analytics/internal/config"
)

// ErrAdminUnauthorized is returned for a bad or missing admin secret.
var ErrAdminUnauthorized = errors.New("admin unauthorized")

// AdminGate checks the shared admin secret supplied on every call.
// There is no admin session lifecycle. When a bcrypt hash is
// configured it takes precedence; the plaintext fallback still uses a
// constant-time comparison.
type AdminGate struct {
	password     string
	passwordHash string
}

// NewAdminGate creates an admin gate from config
func NewAdminGate(cfg config.Config) *AdminGate {
	return &AdminGate{
		password:     cfg.AdminPassword,
		passwordHash: cfg.AdminPasswordHash,
	}
}

// Check verifies the supplied password against the configured secret.
func (g *AdminGate) Check(password string) bool {
	if password == "" {
		return false
	}

	if g.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.passwordHash), []byte(password)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
}

// HashAdminPassword produces a bcrypt hash suitable for
// ADMIN_PASSWORD_HASH.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
