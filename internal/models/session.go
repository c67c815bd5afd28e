package models

import "time"

// Anonymous session sentinel identity. Anonymous sessions follow the
// same lifecycle and expiry rules as named sessions.
const (
	AnonymousUserID = "anonymous"
	AnonymousEmail  = "anonymous@anonymous.com"
	AnonymousName   = "Anonymous"
)

// Session represents one browser's visit, anonymous or identified.
// A session is valid iff IsActive and ExpiresAt is in the future.
// Once destroyed or expired it never becomes valid again.
type Session struct {
	ID        string    `json:"id"` // opaque UUID token
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	IsActive  bool      `json:"is_active"`
}
