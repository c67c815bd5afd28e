package models

import (
	"encoding/base64"
	"strings"
	"time"
)

// User is a durable identity keyed by email. ModelCount only increases
// except via an administrative reset.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ModelCount   int       `json:"model_count"`
	IsBlocked    bool      `json:"is_blocked"`
	BlockReason  string    `json:"block_reason,omitempty"`
}

// UserIDFromEmail derives the deterministic user id used since the old
// JSON-file system: base64 of the email with "/" and "+" stripped,
// truncated to 20 characters. Kept for compatibility with migrated ids.
func UserIDFromEmail(email string) string {
	id := base64.StdEncoding.EncodeToString([]byte(email))
	id = strings.ReplaceAll(id, "/", "")
	id = strings.ReplaceAll(id, "+", "")
	if len(id) > 20 {
		id = id[:20]
	}
	return id
}

// CreateSessionRequest is the form body for identified session creation.
type CreateSessionRequest struct {
	Email string `json:"email" form:"email"`
	Name  string `json:"name" form:"name"`
}
