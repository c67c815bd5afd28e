package models

// PageViewStats is the aggregate page view report over a trailing
// window.
type PageViewStats struct {
	TotalViews     int            `json:"total_views"`
	UniqueVisitors int            `json:"unique_visitors"`
	ViewsBySite    map[string]int `json:"views_by_site"`
	TopPages       []PageCount    `json:"top_pages"`
}

// PageCount is one path's view count.
type PageCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// CADStats is the aggregate CAD event report over a trailing window.
// SuccessRate is a percentage rounded to two decimals, 0 when there
// are no events. AvgDurationMs excludes events without a duration.
type CADStats struct {
	TotalEvents   int            `json:"total_events"`
	EventsByType  map[string]int `json:"events_by_type"`
	SuccessRate   float64        `json:"success_rate"`
	ActiveUsers   int            `json:"active_users"`
	AvgDurationMs int64          `json:"avg_duration_ms"`
}

// UserStats summarizes the user table for the admin dashboard.
type UserStats struct {
	Total     int `json:"total"`
	Active24h int `json:"active_24h"`
}

// AdminStats is the combined admin dashboard payload.
type AdminStats struct {
	PageViews PageViewStats `json:"page_views"`
	CADEvents CADStats      `json:"cad_events"`
	Users     UserStats     `json:"users"`
}
