package tracking

import (
	"path/filepath"
	"testing"

	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

func setupDB(t *testing.T) {
	t.Helper()
	if err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "analytics.db")}); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
}

func TestAdminStatsEmptyDatabase(t *testing.T) {
	setupDB(t)
	agg := NewAggregator()

	stats, err := agg.AdminStats(24)
	if err != nil {
		t.Fatalf("stats over empty database: %v", err)
	}

	if stats.PageViews.TotalViews != 0 || stats.PageViews.UniqueVisitors != 0 {
		t.Errorf("page views not zero: %+v", stats.PageViews)
	}
	if stats.CADEvents.TotalEvents != 0 {
		t.Errorf("cad events not zero: %+v", stats.CADEvents)
	}
	if stats.CADEvents.SuccessRate != 0 {
		t.Errorf("success rate = %v, want 0 with no events", stats.CADEvents.SuccessRate)
	}
	if stats.Users.Total != 0 || stats.Users.Active24h != 0 {
		t.Errorf("user stats not zero: %+v", stats.Users)
	}
}

func TestPageViewAggregation(t *testing.T) {
	setupDB(t)
	tracker := NewTracker()
	agg := NewAggregator()

	views := []struct {
		site, path, ip string
	}{
		{models.SitePortfolio, "/", "1.1.1.1"},
		{models.SitePortfolio, "/", "1.1.1.1"},
		{models.SitePortfolio, "/projects", "2.2.2.2"},
		{models.SiteTextToCAD, "/editor", "2.2.2.2"},
	}
	for _, v := range views {
		if err := tracker.TrackPageView(v.site, v.path, v.ip, "ua", "", "", ""); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := agg.PageViewStats(24)
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalViews != 4 {
		t.Errorf("total views = %d, want 4", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("unique visitors = %d, want 2", stats.UniqueVisitors)
	}
	if stats.ViewsBySite[models.SitePortfolio] != 3 || stats.ViewsBySite[models.SiteTextToCAD] != 1 {
		t.Errorf("views by site = %v", stats.ViewsBySite)
	}
	if len(stats.TopPages) != 3 {
		t.Fatalf("top pages = %v", stats.TopPages)
	}
	if stats.TopPages[0].Path != "/" || stats.TopPages[0].Views != 2 {
		t.Errorf("top page = %+v, want / with 2 views", stats.TopPages[0])
	}
}

func TestCADStatsAggregation(t *testing.T) {
	setupDB(t)
	tracker := NewTracker()
	agg := NewAggregator()

	durA, durB := int64(100), int64(200)
	events := []*models.CADEvent{
		{UserID: "u1", EventType: models.CADEventGenerate, Success: true, DurationMs: &durA},
		{UserID: "u1", EventType: models.CADEventGenerate, Success: true, DurationMs: &durB},
		{UserID: "u2", EventType: models.CADEventError, Success: false},
	}
	for _, ev := range events {
		if err := tracker.TrackCADEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := agg.CADStats(24)
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalEvents != 3 {
		t.Errorf("total events = %d, want 3", stats.TotalEvents)
	}
	if stats.EventsByType[models.CADEventGenerate] != 2 || stats.EventsByType[models.CADEventError] != 1 {
		t.Errorf("events by type = %v", stats.EventsByType)
	}
	// 2 of 3 succeeded: 66.67 after rounding to two decimals.
	if stats.SuccessRate != 66.67 {
		t.Errorf("success rate = %v, want 66.67", stats.SuccessRate)
	}
	if stats.ActiveUsers != 2 {
		t.Errorf("active users = %d, want 2", stats.ActiveUsers)
	}
	// The event without a duration is excluded from the average.
	if stats.AvgDurationMs != 150 {
		t.Errorf("avg duration = %d, want 150", stats.AvgDurationMs)
	}
}

func TestClampHours(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 24},
		{-5, 24},
		{1, 1},
		{24, 24},
		{24 * 365, 24 * 365},
		{24*365 + 1, 24 * 365},
	}
	for _, tc := range cases {
		if got := ClampHours(tc.in); got != tc.want {
			t.Errorf("ClampHours(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestUserActivity(t *testing.T) {
	setupDB(t)
	tracker := NewTracker()
	agg := NewAggregator()

	user, err := database.NewUserRepo().Upsert("dana@example.com", "Dana")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		err := tracker.TrackCADEvent(&models.CADEvent{
			UserID:    user.ID,
			EventType: models.CADEventGenerate,
			Success:   true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, events, err := agg.UserActivity(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "dana@example.com" {
		t.Errorf("email = %q", got.Email)
	}
	if len(events) != 3 {
		t.Errorf("events = %d, want 3", len(events))
	}

	if _, _, err := agg.UserActivity("missing"); err != database.ErrUserNotFound {
		t.Errorf("missing user: err = %v, want ErrUserNotFound", err)
	}
}
