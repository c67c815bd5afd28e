package models

import "time"

// AdminLog is an append-only audit record of an admin-surface action.
type AdminLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	Success   bool      `json:"success"`
}

// Common admin audit actions.
const (
	ActionLoginSuccess   = "login_success"
	ActionLoginFailed    = "login_failed"
	ActionResetUserCount = "reset_user_count"
)
