package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// ErrRateLimited is returned when an identifier has exceeded its
// request ceiling for the current window.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitRepo handles rate limit counter operations
type RateLimitRepo struct{}

// NewRateLimitRepo creates a new rate limit repository
func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{}
}

// Limits carries the fixed-window parameters for CheckAndConsume.
type Limits struct {
	Ceiling     int
	Window      time.Duration
	BlockPeriod time.Duration
}

// CheckAndConsume applies the fixed-window algorithm for one request
// from identifier. The whole read-modify-write runs in a single
// immediate transaction so concurrent requests for the same identifier
// serialize on the row and cannot both slip under the ceiling.
//
// Returns nil when the request is admitted and ErrRateLimited when it
// is rejected (either freshly blocked or still inside a block period).
func (r *RateLimitRepo) CheckAndConsume(identifier, identifierType string, limits Limits) error {
	now := time.Now().UTC()

	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	counter := models.RateLimitCounter{
		Identifier:     identifier,
		IdentifierType: identifierType,
		WindowStart:    now,
	}
	var blockUntil sql.NullTime

	err = tx.QueryRow(`
		SELECT id, request_count, window_start, is_blocked, block_until
		FROM rate_limits WHERE identifier = ? AND identifier_type = ?
	`, identifier, identifierType).Scan(
		&counter.ID, &counter.RequestCount, &counter.WindowStart,
		&counter.IsBlocked, &blockUntil,
	)
	if err == sql.ErrNoRows {
		// First request from this identifier: create the row.
		result, err := tx.Exec(`
			INSERT INTO rate_limits (identifier, identifier_type, request_count, window_start, last_request)
			VALUES (?, ?, 0, ?, ?)
		`, identifier, identifierType, now, now)
		if err != nil {
			return err
		}
		counter.ID, err = result.LastInsertId()
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if blockUntil.Valid {
		counter.BlockUntil = blockUntil.Time
	}

	// Still blocked: reject without touching the counters.
	if counter.IsBlocked && now.Before(counter.BlockUntil) {
		return ErrRateLimited
	}

	// Roll the window forward relative to now, not a calendar boundary.
	if now.Sub(counter.WindowStart) >= limits.Window {
		counter.WindowStart = now
		counter.RequestCount = 0
		counter.IsBlocked = false
	}

	counter.RequestCount++

	if counter.RequestCount > limits.Ceiling {
		counter.IsBlocked = true
		counter.BlockUntil = now.Add(limits.BlockPeriod)
		_, err = tx.Exec(`
			UPDATE rate_limits
			SET request_count = ?, window_start = ?, last_request = ?, is_blocked = 1, block_until = ?
			WHERE id = ?
		`, counter.RequestCount, counter.WindowStart, now, counter.BlockUntil, counter.ID)
		if err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		return ErrRateLimited
	}

	_, err = tx.Exec(`
		UPDATE rate_limits
		SET request_count = ?, window_start = ?, last_request = ?, is_blocked = 0
		WHERE id = ?
	`, counter.RequestCount, counter.WindowStart, now, counter.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves the counter row for an identifier, mainly for tests and
// the admin surface.
func (r *RateLimitRepo) Get(identifier, identifierType string) (*models.RateLimitCounter, error) {
	counter := &models.RateLimitCounter{}
	var blockUntil sql.NullTime

	err := DB.QueryRow(`
		SELECT id, identifier, identifier_type, request_count, window_start, last_request, is_blocked, block_until
		FROM rate_limits WHERE identifier = ? AND identifier_type = ?
	`, identifier, identifierType).Scan(
		&counter.ID, &counter.Identifier, &counter.IdentifierType,
		&counter.RequestCount, &counter.WindowStart, &counter.LastRequest,
		&counter.IsBlocked, &blockUntil,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if blockUntil.Valid {
		counter.BlockUntil = blockUntil.Time
	}

	return counter, nil
}

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")
