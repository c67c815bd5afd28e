package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQuotaExceeded = errors.New("model limit exceeded")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

// Upsert creates the user on first login or refreshes name and
// last_activity on every subsequent one. The id is derived from the
// email, so the operation is idempotent per address.
func (r *UserRepo) Upsert(email, name string) (*models.User, error) {
	now := time.Now().UTC()
	id := models.UserIDFromEmail(email)

	_, err := DB.Exec(`
		INSERT INTO users (id, email, name, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET name = ?, last_activity = ?
	`, id, email, name, now, now, name, now)
	if err != nil {
		return nil, err
	}

	return r.GetByEmail(email)
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id string) (*models.User, error) {
	return r.getOne("SELECT id, email, name, created_at, last_activity, model_count, is_blocked, block_reason FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	return r.getOne("SELECT id, email, name, created_at, last_activity, model_count, is_blocked, block_reason FROM users WHERE email = ?", email)
}

func (r *UserRepo) getOne(query string, arg any) (*models.User, error) {
	user := &models.User{}
	var blockReason sql.NullString

	err := DB.QueryRow(query, arg).Scan(
		&user.ID, &user.Email, &user.Name,
		&user.CreatedAt, &user.LastActivity,
		&user.ModelCount, &user.IsBlocked, &blockReason,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if blockReason.Valid {
		user.BlockReason = blockReason.String
	}

	return user, nil
}

// IncrementModelCount bumps the user's model counter if it is still
// under the ceiling. The check and the increment are one conditional
// update, so two concurrent calls at ceiling-1 cannot both win.
func (r *UserRepo) IncrementModelCount(id string, ceiling int) (int, error) {
	result, err := DB.Exec(`
		UPDATE users SET model_count = model_count + 1, last_activity = ?
		WHERE id = ? AND model_count < ?
	`, time.Now().UTC(), id, ceiling)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		// Zero rows means either no such user or a counter already at
		// the ceiling.
		if _, err := r.GetByID(id); err != nil {
			return 0, err
		}
		return 0, ErrQuotaExceeded
	}

	var count int
	err = DB.QueryRow("SELECT model_count FROM users WHERE id = ?", id).Scan(&count)
	return count, err
}

// ResetModelCount sets the user's counter back to zero. Administrative
// only; the normal increment path never decreases the counter.
func (r *UserRepo) ResetModelCount(id string) error {
	result, err := DB.Exec("UPDATE users SET model_count = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetBlocked blocks or unblocks a user. Blocked users are refused new
// sessions regardless of credentials.
func (r *UserRepo) SetBlocked(id string, blocked bool, reason string) error {
	result, err := DB.Exec(
		"UPDATE users SET is_blocked = ?, block_reason = ? WHERE id = ?",
		blocked, reason, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// List retrieves the most recently active users, newest first.
func (r *UserRepo) List(limit int) ([]*models.User, error) {
	rows, err := DB.Query(`
		SELECT id, email, name, created_at, last_activity, model_count, is_blocked, block_reason
		FROM users ORDER BY last_activity DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var blockReason sql.NullString

		err := rows.Scan(
			&user.ID, &user.Email, &user.Name,
			&user.CreatedAt, &user.LastActivity,
			&user.ModelCount, &user.IsBlocked, &blockReason,
		)
		if err != nil {
			return nil, err
		}

		if blockReason.Valid {
			user.BlockReason = blockReason.String
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CountActiveSince returns users with activity at or after t.
func (r *UserRepo) CountActiveSince(t time.Time) (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE last_activity >= ?", t).Scan(&count)
	return count, err
}

// ExistsByID checks whether a user row is already present.
func (r *UserRepo) ExistsByID(id string) (bool, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count)
	return count > 0, err
}
