package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/models"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// ContextKeySession is the echo context key for the resolved session.
const ContextKeySession = "session"

// RequireSession middleware rejects requests without a valid session.
// Missing, destroyed and expired sessions all produce the same answer.
func RequireSession(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := svc.Validate(SessionIDFromRequest(c))
			if session == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Not authenticated",
				})
			}

			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

// OptionalSession middleware resolves the session if one is presented
// but lets unauthenticated requests through; tracking endpoints record
// events with nullable session linkage.
func OptionalSession(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session := svc.Validate(SessionIDFromRequest(c)); session != nil {
				c.Set(ContextKeySession, session)
			}
			return next(c)
		}
	}
}

// RequireAdmin middleware checks the shared admin secret, passed as a
// query parameter or form field on every call.
func RequireAdmin(gate *AdminGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !gate.Check(AdminPasswordFromRequest(c)) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}
			return next(c)
		}
	}
}

// SessionIDFromRequest extracts the session token from the cookie.
func SessionIDFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// AdminPasswordFromRequest extracts the admin secret from the query
// string or form body.
func AdminPasswordFromRequest(c echo.Context) string {
	if pw := c.QueryParam("password"); pw != "" {
		return pw
	}
	return c.FormValue("password")
}

// SessionFromContext retrieves the session placed by the middleware.
func SessionFromContext(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
