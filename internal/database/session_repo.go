package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// ErrSessionNotFound is returned when no valid session matches. Lookups
// deliberately do not distinguish missing, destroyed and expired rows.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepo handles session database operations
type SessionRepo struct{}

// NewSessionRepo creates a new session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

// Create inserts a new active session and returns it. Tokens are never
// reused; multiple concurrent sessions per user are allowed.
func (r *SessionRepo) Create(userID, email, name, ipAddress, userAgent string, lifetime time.Duration) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: now.Add(lifetime),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		IsActive:  true,
	}

	_, err := DB.Exec(`
		INSERT INTO sessions (id, user_id, email, name, created_at, last_seen, expires_at, ip_address, user_agent, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, session.ID, session.UserID, session.Email, session.Name,
		session.CreatedAt, session.LastSeen, session.ExpiresAt,
		session.IPAddress, session.UserAgent)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetValid retrieves a session that is active and unexpired, updating
// last_seen on the way. Missing, destroyed and expired sessions all
// return ErrSessionNotFound.
func (r *SessionRepo) GetValid(id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	now := time.Now().UTC()

	// The conditional update doubles as the validity check; zero rows
	// means no currently valid session with this id exists.
	result, err := DB.Exec(`
		UPDATE sessions SET last_seen = ?
		WHERE id = ? AND is_active = 1 AND expires_at > ?
	`, now, id, now)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSessionNotFound
	}

	session := &models.Session{}
	err = DB.QueryRow(`
		SELECT id, user_id, email, name, created_at, last_seen, expires_at, ip_address, user_agent, is_active
		FROM sessions WHERE id = ?
	`, id).Scan(
		&session.ID, &session.UserID, &session.Email, &session.Name,
		&session.CreatedAt, &session.LastSeen, &session.ExpiresAt,
		&session.IPAddress, &session.UserAgent, &session.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Destroy marks a session inactive. Destroying a nonexistent or already
// destroyed session is not an error; the operation is idempotent.
func (r *SessionRepo) Destroy(id string) error {
	_, err := DB.Exec("UPDATE sessions SET is_active = 0 WHERE id = ?", id)
	return err
}

// DeleteExpired removes sessions past their expiry. Expired sessions
// already fail validation; this just keeps the table small.
func (r *SessionRepo) DeleteExpired() (int64, error) {
	result, err := DB.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountActiveByUserID returns the number of currently valid sessions
// for a user.
func (r *SessionRepo) CountActiveByUserID(userID string) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM sessions WHERE user_id = ? AND is_active = 1 AND expires_at > ?",
		userID, time.Now().UTC(),
	).Scan(&count)
	return count, err
}
