package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/database"
)

// incrementUserCount handles POST /users/increment-count. Called by
// the generation backend after a successful generation; the session
// must belong to the user being incremented.
func incrementUserCount(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "user_id is required",
		})
	}

	session := auth.SessionFromContext(c)
	if session.UserID != userID {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "Unauthorized",
		})
	}

	newCount, err := quota.Increment(userID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrQuotaExceeded):
			return c.JSON(http.StatusForbidden, map[string]any{
				"error": "Model limit exceeded",
				"limit": quota.Ceiling(),
			})
		case errors.Is(err, database.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		default:
			c.Logger().Error("increment count error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to increment count",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"model_count": newCount,
	})
}

// getUserInfo handles GET /users/:id/info. Unknown users get the
// default zero-count payload rather than an error.
func getUserInfo(c echo.Context) error {
	user, err := userRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusOK, map[string]any{"model_count": 0})
		}
		c.Logger().Error("get user info error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"model_count":  user.ModelCount,
		"created_at":   user.CreatedAt,
		"can_generate": quota.CanGenerate(user.ModelCount),
	})
}
