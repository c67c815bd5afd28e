package models

import "time"

// Rate limit identifier types.
const (
	IdentifierTypeIP   = "ip"
	IdentifierTypeUser = "user"
)

// RateLimitCounter is one fixed-window counter row per
// (identifier, identifier_type) pair. RequestCount only counts
// requests inside the current window; once it exceeds the ceiling the
// row is blocked until BlockUntil, after which the window resets.
type RateLimitCounter struct {
	ID             int64     `json:"id"`
	Identifier     string    `json:"identifier"`
	IdentifierType string    `json:"identifier_type"`
	RequestCount   int       `json:"request_count"`
	WindowStart    time.Time `json:"window_start"`
	LastRequest    time.Time `json:"last_request"`
	IsBlocked      bool      `json:"is_blocked"`
	BlockUntil     time.Time `json:"block_until"`
}
