package database

import (
	"database/sql"
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// EventRepo handles page view and CAD event inserts. Both tables are
// append-only; rows are never updated after insert.
type EventRepo struct{}

// NewEventRepo creates a new event repository
func NewEventRepo() *EventRepo {
	return &EventRepo{}
}

// InsertPageView appends one page view row with a server-assigned
// timestamp.
func (r *EventRepo) InsertPageView(pv *models.PageView) error {
	pv.Timestamp = time.Now().UTC()

	result, err := DB.Exec(`
		INSERT INTO page_views (timestamp, site, path, ip_address, user_agent, referrer, session_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, pv.Timestamp, pv.Site, pv.Path, pv.IPAddress, pv.UserAgent, pv.Referrer,
		nullableString(pv.SessionID), nullableString(pv.UserID))
	if err != nil {
		return err
	}

	pv.ID, err = result.LastInsertId()
	return err
}

// InsertCADEvent appends one CAD lifecycle event row with a
// server-assigned timestamp.
func (r *EventRepo) InsertCADEvent(ev *models.CADEvent) error {
	ev.Timestamp = time.Now().UTC()

	result, err := DB.Exec(`
		INSERT INTO cad_events (timestamp, user_id, session_id, event_type, prompt, code, success, error_message, duration_ms, model_size_bytes, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.Timestamp, ev.UserID, ev.SessionID, ev.EventType,
		nullableString(ev.Prompt), nullableString(ev.Code),
		ev.Success, nullableString(ev.ErrorMessage),
		ev.DurationMs, ev.ModelSizeBytes, ev.IPAddress)
	if err != nil {
		return err
	}

	ev.ID, err = result.LastInsertId()
	return err
}

// CADEventsAfter returns CAD events with id greater than afterID,
// oldest first. Used by the live admin feed to poll for new rows.
func (r *EventRepo) CADEventsAfter(afterID int64, limit int) ([]*models.CADEvent, error) {
	rows, err := DB.Query(`
		SELECT id, timestamp, user_id, session_id, event_type, prompt, code, success, error_message, duration_ms, model_size_bytes, ip_address
		FROM cad_events WHERE id > ? ORDER BY id ASC LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.CADEvent
	for rows.Next() {
		ev, err := scanCADEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// RecentCADEventsForUser returns a user's latest events, newest first.
func (r *EventRepo) RecentCADEventsForUser(userID string, limit int) ([]*models.CADEvent, error) {
	rows, err := DB.Query(`
		SELECT id, timestamp, user_id, session_id, event_type, prompt, code, success, error_message, duration_ms, model_size_bytes, ip_address
		FROM cad_events WHERE user_id = ? ORDER BY timestamp DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.CADEvent
	for rows.Next() {
		ev, err := scanCADEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// LatestCADEventID returns the highest cad_events id, 0 when empty.
func (r *EventRepo) LatestCADEventID() (int64, error) {
	var id sql.NullInt64
	err := DB.QueryRow("SELECT MAX(id) FROM cad_events").Scan(&id)
	if err != nil {
		return 0, err
	}
	return id.Int64, nil
}

func scanCADEvent(rows *sql.Rows) (*models.CADEvent, error) {
	ev := &models.CADEvent{}
	var prompt, code, errMsg sql.NullString
	var duration, size sql.NullInt64

	err := rows.Scan(
		&ev.ID, &ev.Timestamp, &ev.UserID, &ev.SessionID, &ev.EventType,
		&prompt, &code, &ev.Success, &errMsg, &duration, &size, &ev.IPAddress,
	)
	if err != nil {
		return nil, err
	}

	if prompt.Valid {
		ev.Prompt = prompt.String
	}
	if code.Valid {
		ev.Code = code.String
	}
	if errMsg.Valid {
		ev.ErrorMessage = errMsg.String
	}
	if duration.Valid {
		ev.DurationMs = &duration.Int64
	}
	if size.Valid {
		ev.ModelSizeBytes = &size.Int64
	}

	return ev, nil
}

// nullableString maps "" to NULL so optional linkage columns stay
// queryable with IS NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
