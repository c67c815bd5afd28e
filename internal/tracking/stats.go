package tracking

import (
	"time"

	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

// Aggregator computes read-only statistics over a trailing time window
// for the admin surface. Every call recomputes from the source tables.
type Aggregator struct {
	statsRepo *database.StatsRepo
	userRepo  *database.UserRepo
	eventRepo *database.EventRepo
}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		statsRepo: database.NewStatsRepo(),
		userRepo:  database.NewUserRepo(),
		eventRepo: database.NewEventRepo(),
	}
}

// maxWindowHours caps admin-supplied windows; aggregate queries have no
// server-side timeout, so the window is bounded instead.
const maxWindowHours = 24 * 365

// ClampHours bounds an admin-supplied window to [1, one year].
func ClampHours(hours int) int {
	if hours < 1 {
		return 24
	}
	if hours > maxWindowHours {
		return maxWindowHours
	}
	return hours
}

// AdminStats assembles the combined dashboard payload over the last
// `hours` hours (user activity is always measured over 24h).
func (a *Aggregator) AdminStats(hours int) (*models.AdminStats, error) {
	since := time.Now().UTC().Add(-time.Duration(ClampHours(hours)) * time.Hour)

	pageStats, err := a.statsRepo.PageViewStats(since)
	if err != nil {
		return nil, err
	}

	cadStats, err := a.statsRepo.CADStats(since)
	if err != nil {
		return nil, err
	}

	totalUsers, err := a.userRepo.Count()
	if err != nil {
		return nil, err
	}

	active24h, err := a.userRepo.CountActiveSince(time.Now().UTC().Add(-24 * time.Hour))
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		PageViews: *pageStats,
		CADEvents: *cadStats,
		Users: models.UserStats{
			Total:     totalUsers,
			Active24h: active24h,
		},
	}, nil
}

// PageViewStats exposes the page view aggregate alone.
func (a *Aggregator) PageViewStats(hours int) (*models.PageViewStats, error) {
	since := time.Now().UTC().Add(-time.Duration(ClampHours(hours)) * time.Hour)
	return a.statsRepo.PageViewStats(since)
}

// CADStats exposes the CAD event aggregate alone.
func (a *Aggregator) CADStats(hours int) (*models.CADStats, error) {
	since := time.Now().UTC().Add(-time.Duration(ClampHours(hours)) * time.Hour)
	return a.statsRepo.CADStats(since)
}

// UserActivity returns one user's profile with their latest events.
func (a *Aggregator) UserActivity(userID string) (*models.User, []*models.CADEvent, error) {
	user, err := a.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}

	events, err := a.eventRepo.RecentCADEventsForUser(userID, 10)
	if err != nil {
		return nil, nil, err
	}

	return user, events, nil
}
