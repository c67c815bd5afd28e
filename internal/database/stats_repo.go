package database

import (
	"database/sql"
	"math"
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// StatsRepo runs the read-only aggregation queries behind the admin
// surface. Everything is computed fresh per call; there are no
// materialized counters.
type StatsRepo struct{}

// NewStatsRepo creates a new stats repository
func NewStatsRepo() *StatsRepo {
	return &StatsRepo{}
}

// PageViewStats aggregates page views recorded at or after since.
func (r *StatsRepo) PageViewStats(since time.Time) (*models.PageViewStats, error) {
	stats := &models.PageViewStats{
		ViewsBySite: map[string]int{},
		TopPages:    []models.PageCount{},
	}

	err := DB.QueryRow(
		"SELECT COUNT(*) FROM page_views WHERE timestamp >= ?", since,
	).Scan(&stats.TotalViews)
	if err != nil {
		return nil, err
	}

	err = DB.QueryRow(
		"SELECT COUNT(DISTINCT ip_address) FROM page_views WHERE timestamp >= ?", since,
	).Scan(&stats.UniqueVisitors)
	if err != nil {
		return nil, err
	}

	rows, err := DB.Query(`
		SELECT site, COUNT(*) FROM page_views
		WHERE timestamp >= ? GROUP BY site
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var site string
		var count int
		if err := rows.Scan(&site, &count); err != nil {
			return nil, err
		}
		stats.ViewsBySite[site] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pageRows, err := DB.Query(`
		SELECT path, COUNT(*) AS views FROM page_views
		WHERE timestamp >= ?
		GROUP BY path ORDER BY views DESC LIMIT 10
	`, since)
	if err != nil {
		return nil, err
	}
	defer pageRows.Close()
	for pageRows.Next() {
		var pc models.PageCount
		if err := pageRows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, err
		}
		stats.TopPages = append(stats.TopPages, pc)
	}
	if err := pageRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// CADStats aggregates CAD events recorded at or after since. With no
// events in the window every figure is zero; the success rate never
// divides by zero.
func (r *StatsRepo) CADStats(since time.Time) (*models.CADStats, error) {
	stats := &models.CADStats{
		EventsByType: map[string]int{},
	}

	var successCount int
	err := DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(success), 0)
		FROM cad_events WHERE timestamp >= ?
	`, since).Scan(&stats.TotalEvents, &successCount)
	if err != nil {
		return nil, err
	}

	rows, err := DB.Query(`
		SELECT event_type, COUNT(*) FROM cad_events
		WHERE timestamp >= ? GROUP BY event_type
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		stats.EventsByType[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalEvents > 0 {
		rate := float64(successCount) / float64(stats.TotalEvents) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	err = DB.QueryRow(
		"SELECT COUNT(DISTINCT user_id) FROM cad_events WHERE timestamp >= ?", since,
	).Scan(&stats.ActiveUsers)
	if err != nil {
		return nil, err
	}

	// NULL durations are excluded from the average, not counted as zero.
	var avg sql.NullFloat64
	err = DB.QueryRow(`
		SELECT AVG(duration_ms) FROM cad_events
		WHERE timestamp >= ? AND duration_ms IS NOT NULL
	`, since).Scan(&avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AvgDurationMs = int64(avg.Float64)
	}

	return stats, nil
}
