package database

import (
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// AdminLogRepo handles the append-only admin audit log
type AdminLogRepo struct{}

// NewAdminLogRepo creates a new admin log repository
func NewAdminLogRepo() *AdminLogRepo {
	return &AdminLogRepo{}
}

// Log appends one audit entry with the current timestamp.
func (r *AdminLogRepo) Log(action, details, ipAddress string, success bool) error {
	entry := &models.AdminLog{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
		IPAddress: ipAddress,
		Success:   success,
	}
	return r.Create(entry)
}

// Create appends one audit entry.
func (r *AdminLogRepo) Create(entry *models.AdminLog) error {
	result, err := DB.Exec(`
		INSERT INTO admin_logs (timestamp, action, details, ip_address, success)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Timestamp, entry.Action, entry.Details, entry.IPAddress, entry.Success)
	if err != nil {
		return err
	}

	entry.ID, err = result.LastInsertId()
	return err
}

// List retrieves recent audit entries, newest first, optionally
// filtered by action.
func (r *AdminLogRepo) List(action string, limit int) ([]*models.AdminLog, error) {
	query := "SELECT id, timestamp, action, details, ip_address, success FROM admin_logs"
	args := []any{}
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, action)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AdminLog
	for rows.Next() {
		entry := &models.AdminLog{}
		err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.Action,
			&entry.Details, &entry.IPAddress, &entry.Success,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CountByAction returns the number of entries recorded for an action.
func (r *AdminLogRepo) CountByAction(action string) (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM admin_logs WHERE action = ?", action).Scan(&count)
	return count, err
}
