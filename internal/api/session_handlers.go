package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

// createAnonymousSession handles POST /session
func createAnonymousSession(c echo.Context) error {
	session, err := authService.CreateAnonymous(c.RealIP(), c.Request().UserAgent())
	if err != nil {
		c.Logger().Error("create anonymous session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create session",
		})
	}

	setSessionCookie(c, session.ID)

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"session_id": session.ID,
	})
}

// createUserSession handles POST /auth/create-session
func createUserSession(c echo.Context) error {
	var req models.CreateSessionRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and name are required",
		})
	}

	user, session, err := authService.Login(req.Email, req.Name, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrAccountBlocked) {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Account blocked: " + user.BlockReason,
			})
		}
		c.Logger().Error("create session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create session",
		})
	}

	setSessionCookie(c, session.ID)

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":           user.ID,
			"email":        user.Email,
			"name":         user.Name,
			"model_count":  user.ModelCount,
			"can_generate": quota.CanGenerate(user.ModelCount),
		},
		"csrf_token": csrf.Token(session.ID),
	})
}

// destroySession handles POST /auth/destroy-session. Idempotent:
// destroying a missing or already-destroyed session still succeeds.
func destroySession(c echo.Context) error {
	if sessionID := auth.SessionIDFromRequest(c); sessionID != "" {
		if err := authService.Destroy(sessionID); err != nil {
			c.Logger().Error("destroy session error: ", err)
		}
	}

	clearSessionCookie(c)

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// currentUser handles GET /auth/current-user
func currentUser(c echo.Context) error {
	session := auth.SessionFromContext(c)

	user, err := userRepo.GetByID(session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		}
		c.Logger().Error("current user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"model_count":  user.ModelCount,
		"can_generate": quota.CanGenerate(user.ModelCount),
	})
}

func setSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(authService.SessionLifetime().Seconds()),
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
