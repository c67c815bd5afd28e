package models

import "time"

// Site names tracked by the service.
const (
	SitePortfolio = "portfolio"
	SiteTextToCAD = "text-to-cad"
)

// PageView is an immutable page view record. Link clicks and scroll
// milestones are recorded as page views with synthetic paths
// ("/link-click/<type>", "/scroll/<pct>%").
type PageView struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Site      string    `json:"site"`
	Path      string    `json:"path"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}

// CAD event types.
const (
	CADEventGenerate = "generate"
	CADEventExecute  = "execute"
	CADEventDownload = "download"
	CADEventError    = "error"
)

// CADEvent is an immutable CAD generation lifecycle record.
type CADEvent struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"user_id"`
	SessionID      string    `json:"session_id"`
	EventType      string    `json:"event_type"`
	Prompt         string    `json:"prompt,omitempty"`
	Code           string    `json:"code,omitempty"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	DurationMs     *int64    `json:"duration_ms,omitempty"`
	ModelSizeBytes *int64    `json:"model_size_bytes,omitempty"`
	IPAddress      string    `json:"ip_address"`
}

// PageViewRequest is the body for POST /track/pageview.
type PageViewRequest struct {
	Site string `json:"site"`
	Path string `json:"path"`
}

// LinkClickRequest is the body for POST /track/link-click.
type LinkClickRequest struct {
	Site     string `json:"site"`
	LinkType string `json:"link_type"`
}

// ScrollRequest is the body for POST /track/scroll.
type ScrollRequest struct {
	Site             string `json:"site"`
	ScrollPercentage int    `json:"scroll_percentage"`
}

// CADEventRequest is the body for POST /track/cad-event.
type CADEventRequest struct {
	EventType      string `json:"event_type"`
	Prompt         string `json:"prompt"`
	Code           string `json:"code"`
	Success        *bool  `json:"success"`
	ErrorMessage   string `json:"error_message"`
	ModelSizeBytes *int64 `json:"model_size_bytes"`
}
