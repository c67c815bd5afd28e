package auth

import (
	"errors"
	"time"

	"github.com/salonibalkondekar/analytics/internal/config"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

var (
	// ErrNotAuthenticated is returned where a valid session is
	// mandatory and none was presented.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAccountBlocked is returned on session creation for a blocked
	// user, regardless of credentials.
	ErrAccountBlocked = errors.New("account blocked")
)

// Service is the session gate. Sessions move
// ANONYMOUS_OR_NEW -> ACTIVE -> {EXPIRED | DESTROYED}; expired and
// destroyed sessions never validate again and the caller must
// re-authenticate, producing a brand-new token.
type Service struct {
	cfg         config.Config
	sessionRepo *database.SessionRepo
	userRepo    *database.UserRepo
}

// NewService creates a new session gate service
func NewService(cfg config.Config) *Service {
	return &Service{
		cfg:         cfg,
		sessionRepo: database.NewSessionRepo(),
		userRepo:    database.NewUserRepo(),
	}
}

// CreateAnonymous creates a session with the sentinel anonymous
// identity. It participates in the same expiry rules as named sessions.
func (s *Service) CreateAnonymous(ipAddress, userAgent string) (*models.Session, error) {
	return s.sessionRepo.Create(
		models.AnonymousUserID, models.AnonymousEmail, models.AnonymousName,
		ipAddress, userAgent, s.cfg.SessionLifetime,
	)
}

// Login upserts the user by email and creates a session for them.
// Blocked users are rejected before any session is issued.
func (s *Service) Login(email, name, ipAddress, userAgent string) (*models.User, *models.Session, error) {
	user, err := s.userRepo.Upsert(email, name)
	if err != nil {
		return nil, nil, err
	}

	if user.IsBlocked {
		return user, nil, ErrAccountBlocked
	}

	session, err := s.sessionRepo.Create(
		user.ID, user.Email, user.Name, ipAddress, userAgent, s.cfg.SessionLifetime,
	)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Validate resolves a session id to its session if it is active and
// unexpired, bumping last_seen. Returns nil (no error) otherwise; the
// caller cannot tell a destroyed or expired session from one that
// never existed.
func (s *Service) Validate(sessionID string) *models.Session {
	session, err := s.sessionRepo.GetValid(sessionID)
	if err != nil {
		return nil
	}
	return session
}

// RequireValid wraps Validate for callers that need identity; absence
// fails with ErrNotAuthenticated.
func (s *Service) RequireValid(sessionID string) (*models.Session, error) {
	session := s.Validate(sessionID)
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

// Destroy invalidates a session. Idempotent: destroying twice or
// destroying an unknown id is not an error.
func (s *Service) Destroy(sessionID string) error {
	return s.sessionRepo.Destroy(sessionID)
}

// SessionLifetime exposes the configured lifetime for cookie Max-Age.
func (s *Service) SessionLifetime() time.Duration {
	return s.cfg.SessionLifetime
}
