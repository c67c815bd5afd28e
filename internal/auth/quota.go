package auth

import (
	"errors"

	"github.com/salonibalkondekar/analytics/internal/config"
	"github.com/salonibalkondekar/analytics/internal/database"
)

// ErrQuotaExceeded is returned when an increment would push a user's
// model count past the ceiling. Not retryable until an admin reset.
var ErrQuotaExceeded = database.ErrQuotaExceeded

// QuotaEnforcer bounds the per-user model generation counter. The
// ceiling is re-checked inside the increment itself, never trusted
// from an earlier CheckLimit call.
type QuotaEnforcer struct {
	ceiling  int
	userRepo *database.UserRepo
}

// NewQuotaEnforcer creates a quota enforcer with the configured ceiling
func NewQuotaEnforcer(cfg config.Config) *QuotaEnforcer {
	return &QuotaEnforcer{
		ceiling:  cfg.ModelLimit,
		userRepo: database.NewUserRepo(),
	}
}

// Ceiling returns the configured per-user limit.
func (q *QuotaEnforcer) Ceiling() int {
	return q.ceiling
}

// CheckLimit reports whether the user may still generate. A user with
// no record yet is implicitly allowed (count 0).
func (q *QuotaEnforcer) CheckLimit(userID string) (bool, error) {
	user, err := q.userRepo.GetByID(userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return user.ModelCount < q.ceiling, nil
}

// Increment atomically bumps the user's counter, failing with
// ErrQuotaExceeded at the ceiling. At most one of two concurrent calls
// at ceiling-1 succeeds.
func (q *QuotaEnforcer) Increment(userID string) (int, error) {
	return q.userRepo.IncrementModelCount(userID, q.ceiling)
}

// Reset zeroes the counter. Administrative only; callers are expected
// to write an audit entry alongside.
func (q *QuotaEnforcer) Reset(userID string) error {
	return q.userRepo.ResetModelCount(userID)
}

// CanGenerate is a convenience for response payloads.
func (q *QuotaEnforcer) CanGenerate(modelCount int) bool {
	return modelCount < q.ceiling
}
